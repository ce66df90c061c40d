package graph

import "testing"

func TestBuilder_SimpleModeConnectsSingleSource(t *testing.T) {
	b := NewBuilder(testLogger())
	g, err := b.Build("s1", Config{CrossfadeEnabled: false})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	input, ok := g.ChainInputNode()
	if !ok || input.ID() != "source0" {
		t.Fatalf("expected chain input source0, got %+v ok=%v", input, ok)
	}
	if conns := g.Connections("source1"); len(conns) != 0 {
		t.Fatalf("source1 should be unconnected in simple mode, got %v", conns)
	}
}

func TestBuilder_DualModeWiresMixer(t *testing.T) {
	b := NewBuilder(testLogger())
	g, err := b.Build("s2", Config{CrossfadeEnabled: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	input, ok := g.ChainInputNode()
	if !ok || input.ID() != "mixer" {
		t.Fatalf("expected chain input mixer, got %+v ok=%v", input, ok)
	}
	if conns := g.Connections("fade0"); len(conns) != 1 || conns[0] != "mixer" {
		t.Fatalf("expected fade0 -> mixer, got %v", conns)
	}
}

func TestBuilder_EQDisabledRetainsNoFilterNodesButKeepsPreamp(t *testing.T) {
	b := NewBuilder(testLogger())
	g, err := b.Build("s3", Config{EQEnabled: false})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := g.Node("eq0"); ok {
		t.Fatalf("expected no eq nodes when EQ disabled")
	}
	if _, ok := g.Node("preamp"); !ok {
		t.Fatalf("expected preamp node present regardless of EQ state")
	}
}

func TestBuilder_GraphicEQBuildsTenBands(t *testing.T) {
	b := NewBuilder(testLogger())
	cfg := Config{EQEnabled: true, EQMode: EQModeGraphic}
	g, err := b.Build("s4", cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := g.Node("eq0"); !ok {
		t.Fatalf("expected eq0 band present")
	}
	if _, ok := g.Node("eq9"); !ok {
		t.Fatalf("expected eq9 band present")
	}
}

func TestGraph_TeardownClosesGraph(t *testing.T) {
	g := NewGraph("t", testLogger())
	_ = g.AddNode(NewSourceNode("source0", 0))
	g.Teardown()
	if err := g.AddNode(NewSourceNode("source1", 1)); err != ErrGraphClosed {
		t.Fatalf("expected ErrGraphClosed after teardown, got %v", err)
	}
}
