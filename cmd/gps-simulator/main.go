package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"fishguard/internal/model"
	"fishguard/internal/util"
)

// Command line flags
var (
	serverURL    string
	boatID       string
	boatName     string
	interval     time.Duration
	polyline     string
	speedKnots   float64
	stepDuration time.Duration
	dryRun       bool
)

// trackPoint is one fix of a replayed track
type trackPoint struct {
	Time       time.Time
	Position   model.GeoPoint
	SpeedKnots float64
	BearingDeg float64
}

// sampleTrack is a recorded fishing vessel track across the antimeridian
var sampleTrack = []struct {
	time  string
	lon   float64
	lat   float64
	speed float64
}{
	{"2020-04-01 22:16:12", 175.54633, 11.52798, 9.2},
	{"2020-04-03 14:06:04", 175.89517, 11.68842, 3.9},
	{"2020-04-05 18:19:21", 175.98398, 11.66094, 3.5},
	{"2020-04-12 18:20:58", 174.92369, 13.35526, 3.0},
	{"2020-04-17 06:06:11", 179.41869, 10.846482, 4.7},
	{"2020-04-18 06:19:01", -177.97417, 12.26355, 7.3},
	{"2020-04-18 22:26:21", -177.95534, 12.262037, 4.1},
}

func init() {
	flag.StringVar(&serverURL, "server", "http://localhost:8000", "Base URL of the tracking server")
	flag.StringVar(&boatID, "boat-id", "412200078", "Boat identifier to report as")
	flag.StringVar(&boatName, "boat-name", "", "Optional boat name")
	flag.DurationVar(&interval, "interval", 10*time.Second, "Wall-clock delay between sentences")
	flag.StringVar(&polyline, "polyline", "", "Encoded polyline to walk instead of the built-in track")
	flag.Float64Var(&speedKnots, "speed", 8, "Speed in knots when walking a polyline")
	flag.DurationVar(&stepDuration, "step", time.Minute, "Simulated time between fixes when walking a polyline")
	flag.BoolVar(&dryRun, "dry-run", false, "Print sentences without sending them")
}

func main() {
	flag.Parse()

	var track []trackPoint
	var err error
	if polyline != "" {
		track, err = walkPolyline(polyline, speedKnots, stepDuration, time.Now().UTC())
	} else {
		track, err = builtinTrack()
	}
	if err != nil {
		log.Fatalf("Failed to build track: %v", err)
	}

	log.Printf("GPS simulator started: %d fixes, boat %s, interval %v", len(track), boatID, interval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	client := &http.Client{Timeout: 10 * time.Second}
	for i, p := range track {
		sentence := util.FormatGPRMC(p.Position, p.SpeedKnots, p.BearingDeg, p.Time)
		log.Printf("Sending (%d/%d): %s", i+1, len(track), sentence)

		if !dryRun {
			if err := send(client, sentence); err != nil {
				log.Printf("WARNING: fix %d not delivered: %v", i+1, err)
			}
		}

		if i == len(track)-1 {
			break
		}
		select {
		case <-stop:
			log.Println("Simulator stopped by user")
			return
		case <-time.After(interval):
		}
	}

	log.Println("All fixes sent")
}

func builtinTrack() ([]trackPoint, error) {
	track := make([]trackPoint, 0, len(sampleTrack))
	for _, r := range sampleTrack {
		t, err := time.Parse("2006-01-02 15:04:05", r.time)
		if err != nil {
			return nil, err
		}
		track = append(track, trackPoint{
			Time:       t,
			Position:   model.GeoPoint{Lon: r.lon, Lat: r.lat},
			SpeedKnots: r.speed,
		})
	}
	return track, nil
}

// walkPolyline steps along the decoded line at a constant speed, emitting a
// fix every step of simulated time plus the final vertex.
func walkPolyline(encoded string, knots float64, step time.Duration, start time.Time) ([]trackPoint, error) {
	vertices, err := util.DecodePolyline(encoded)
	if err != nil {
		return nil, err
	}
	if len(vertices) < 2 {
		return nil, fmt.Errorf("polyline needs at least 2 points, got %d", len(vertices))
	}
	if knots <= 0 || step <= 0 {
		return nil, fmt.Errorf("speed and step must be positive")
	}

	stepMeters := knots * 1852 / 3600 * step.Seconds()
	pos := vertices[0]
	next := 1
	t := start

	var track []trackPoint
	for next < len(vertices) {
		bearing := util.InitialBearing(pos, vertices[next])
		track = append(track, trackPoint{Time: t, Position: pos, SpeedKnots: knots, BearingDeg: bearing})

		remaining := stepMeters
		for remaining > 0 && next < len(vertices) {
			leg := util.HaversineDistance(pos, vertices[next])
			if leg <= remaining {
				remaining -= leg
				pos = vertices[next]
				next++
				continue
			}
			pos = util.MoveToward(pos, vertices[next], remaining)
			remaining = 0
		}
		t = t.Add(step)
	}

	track = append(track, trackPoint{Time: t, Position: pos, SpeedKnots: 0, BearingDeg: track[len(track)-1].BearingDeg})
	return track, nil
}

func send(client *http.Client, sentence string) error {
	body, err := json.Marshal(map[string]string{
		"boat_id":   boatID,
		"boat_name": boatName,
		"sentence":  sentence,
	})
	if err != nil {
		return err
	}

	resp, err := client.Post(serverURL+"/api/nmea", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}
