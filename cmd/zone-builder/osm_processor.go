package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"fishguard/internal/service/zone"

	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
)

// OSMProcessor extracts closed ways matching a tag filter as zone polygons
type OSMProcessor struct {
	Zones []*zone.ZoneSpatial

	tagKey   string
	tagValue string
	nameTag  string
	nodes    map[int64]orb.Point
}

// NewOSMProcessor creates a processor for ways tagged key (=value when value is set)
func NewOSMProcessor(key, value, nameTag string) *OSMProcessor {
	return &OSMProcessor{
		tagKey:   key,
		tagValue: value,
		nameTag:  nameTag,
		nodes:    make(map[int64]orb.Point),
	}
}

// ProcessOSMFile reads the file twice: nodes first, then ways
func (p *OSMProcessor) ProcessOSMFile(osmFilePath string) error {
	log.Printf("Processing OSM file: %s", osmFilePath)

	file, err := os.Open(osmFilePath)
	if err != nil {
		return fmt.Errorf("failed to open OSM file: %w", err)
	}
	defer file.Close()

	log.Println("First pass: collecting nodes...")
	if err := p.collectNodes(newDecoder(file)); err != nil {
		return err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind OSM file: %w", err)
	}

	log.Println("Second pass: processing ways...")
	if err := p.processWays(newDecoder(file)); err != nil {
		return err
	}

	log.Printf("Processing complete. Found %d zones.", len(p.Zones))
	return nil
}

func newDecoder(r io.Reader) *osmpbf.Decoder {
	decoder := osmpbf.NewDecoder(r)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	decoder.Start(runtime.GOMAXPROCS(-1))
	return decoder
}

func (p *OSMProcessor) collectNodes(decoder *osmpbf.Decoder) error {
	var nodeCount int
	for {
		obj, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}

		if node, ok := obj.(*osmpbf.Node); ok {
			p.nodes[node.ID] = orb.Point{node.Lon, node.Lat}
			nodeCount++
			if nodeCount%1000000 == 0 {
				log.Printf("Processed %d nodes...", nodeCount)
			}
		}
	}

	log.Printf("Collected %d nodes", nodeCount)
	return nil
}

func (p *OSMProcessor) processWays(decoder *osmpbf.Decoder) error {
	for {
		obj, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}

		way, ok := obj.(*osmpbf.Way)
		if !ok || !p.matches(way.Tags) {
			continue
		}
		if z := p.zoneFromWay(way); z != nil {
			p.Zones = append(p.Zones, z)
		}
	}
	return nil
}

func (p *OSMProcessor) matches(tags map[string]string) bool {
	v, ok := tags[p.tagKey]
	if !ok {
		return false
	}
	if p.tagValue == "" {
		return v != "no"
	}
	return v == p.tagValue
}

// zoneFromWay builds a polygon from a closed way, nil when nodes are missing
// or the way is not closed
func (p *OSMProcessor) zoneFromWay(way *osmpbf.Way) *zone.ZoneSpatial {
	if len(way.NodeIDs) < 4 || way.NodeIDs[0] != way.NodeIDs[len(way.NodeIDs)-1] {
		return nil
	}

	ring := make(orb.Ring, 0, len(way.NodeIDs))
	for _, id := range way.NodeIDs {
		pt, ok := p.nodes[id]
		if !ok {
			return nil
		}
		ring = append(ring, pt)
	}

	polygon := orb.Polygon{ring}
	props := map[string]any{"osm_id": way.ID}
	for k, v := range way.Tags {
		props[k] = v
	}
	return &zone.ZoneSpatial{
		Feature:     len(p.Zones),
		Name:        way.Tags[p.nameTag],
		Polygon:     polygon,
		BoundingBox: polygon.Bound(),
		Properties:  props,
	}
}
