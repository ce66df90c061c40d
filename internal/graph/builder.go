/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package graph

import (
	"fmt"

	"github.com/rs/zerolog"
)

// EQMode selects between the fixed 10-band graphic chain and an arbitrary
// parametric band list.
type EQMode string

const (
	EQModeGraphic    EQMode = "graphic"
	EQModeParametric EQMode = "parametric"
)

// GraphicFrequencies are the ten fixed graphic-EQ band centers (Hz). Band 0
// is a low-shelf, band 9 a high-shelf, 1-8 are peaking with Q=1.4.
var GraphicFrequencies = [10]float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

const graphicPeakingQ = 1.4

// Config describes the topology a Builder should assemble, mirroring the
// effects controller's live parameter state (§4.1/§4.2 of the spec this
// engine implements).
type Config struct {
	CrossfadeEnabled bool

	EQEnabled        bool
	EQMode           EQMode
	GraphicGains     [10]float64
	ParametricBands  []ParametricBand

	PreampDB float64

	CrossfeedEnabled bool
	CrossfeedLevel   float64 // -1..+1
	CrossfeedDelayMs float64
	CrossfeedShadowHz float64

	LoudnessEnabled bool

	NoiseEnabled bool
}

// ParametricBand is one band of an arbitrary-order parametric EQ chain.
type ParametricBand struct {
	Type      FilterType `json:"type"`
	Frequency float64    `json:"frequency"`
	Q         float64    `json:"q"`
	GainDB    float64    `json:"gain"`
}

// Builder assembles a Graph from a Config, playing the same role as the
// DSP compiler's Build(graphProto): validate, build each node, wire
// connections — generalized from a GStreamer pipeline string to live
// topology with the "chain input"/"chain end" bookkeeping the glossary
// requires.
type Builder struct {
	logger zerolog.Logger
}

// NewBuilder creates a graph builder.
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{logger: logger.With().Str("component", "graph-builder").Logger()}
}

// Build constructs a fresh Graph for the given config. In dual mode (crossfade
// enabled) both media sources are wired through per-source ReplayGain and
// fade gains into a mixer; in simple mode only source 0 is connected.
func (b *Builder) Build(id string, cfg Config) (*Graph, error) {
	g := NewGraph(id, b.logger)

	src0 := NewSourceNode("source0", 0)
	src1 := NewSourceNode("source1", 1)
	dest := NewDestinationNode("destination")
	if err := g.AddNode(src0); err != nil {
		return nil, err
	}
	if err := g.AddNode(src1); err != nil {
		return nil, err
	}
	if err := g.AddNode(dest); err != nil {
		return nil, err
	}

	var chainInput string
	if cfg.CrossfadeEnabled {
		rg0 := NewReplayGainNode("rg0")
		rg1 := NewReplayGainNode("rg1")
		fade0 := NewFadeGainNode("fade0", 1.0)
		fade1 := NewFadeGainNode("fade1", 0.0)
		mixer := NewMixerNode("mixer")
		for _, n := range []Node{rg0, rg1, fade0, fade1, mixer} {
			if err := g.AddNode(n); err != nil {
				return nil, err
			}
		}
		_ = g.Connect("source0", "rg0")
		_ = g.Connect("rg0", "fade0")
		_ = g.Connect("fade0", "mixer")
		_ = g.Connect("source1", "rg1")
		_ = g.Connect("rg1", "fade1")
		_ = g.Connect("fade1", "mixer")
		chainInput = "mixer"
	} else {
		chainInput = "source0"
	}
	g.SetChainInput(chainInput)

	last := chainInput

	if cfg.LoudnessEnabled {
		loudness := NewLoudnessNode("loudness")
		if err := g.AddNode(loudness); err != nil {
			return nil, err
		}
		_ = g.Connect(last, "loudness")
		last = "loudness"
	}

	if cfg.EQEnabled {
		bands, err := b.eqBands(cfg)
		if err != nil {
			return nil, err
		}
		for i, band := range bands {
			nodeID := fmt.Sprintf("eq%d", i)
			n := NewEQFilterNode(nodeID, band.Type, band.Frequency, band.Q, band.GainDB)
			if err := g.AddNode(n); err != nil {
				return nil, err
			}
			_ = g.Connect(last, nodeID)
			last = nodeID
		}
	}

	preamp := NewPreampNode("preamp")
	preamp.GainDB = cfg.PreampDB
	if err := g.AddNode(preamp); err != nil {
		return nil, err
	}
	_ = g.Connect(last, "preamp")
	last = "preamp"

	if cfg.CrossfeedEnabled {
		cf := NewCrossfeedNode("crossfeed")
		cf.Level = cfg.CrossfeedLevel
		cf.DelayMs = cfg.CrossfeedDelayMs
		cf.ShadowHz = cfg.CrossfeedShadowHz
		if err := g.AddNode(cf); err != nil {
			return nil, err
		}
		_ = g.Connect(last, "crossfeed")
		last = "crossfeed"
	}

	if cfg.NoiseEnabled {
		noise := NewNoiseNode("noise")
		if err := g.AddNode(noise); err != nil {
			return nil, err
		}
		_ = g.Connect(last, "noise")
		last = "noise"
	}

	g.SetChainEnd(last)
	_ = g.Connect(last, "destination")

	b.logger.Debug().Bool("dual", cfg.CrossfadeEnabled).Str("chain_end", last).Msg("graph built")
	return g, nil
}

func (b *Builder) eqBands(cfg Config) ([]ParametricBand, error) {
	if cfg.EQMode == EQModeParametric {
		return cfg.ParametricBands, nil
	}
	bands := make([]ParametricBand, 10)
	for i, freq := range GraphicFrequencies {
		t := FilterPeaking
		q := graphicPeakingQ
		switch i {
		case 0:
			t = FilterLowShelf
			q = 1.0
		case 9:
			t = FilterHighShelf
			q = 1.0
		}
		bands[i] = ParametricBand{Type: t, Frequency: freq, Q: q, GainDB: cfg.GraphicGains[i]}
	}
	return bands, nil
}
