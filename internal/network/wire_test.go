package network_test

import (
	"testing"

	"github.com/jaimedvw/stellar-simulator/internal/consensus"
	"github.com/jaimedvw/stellar-simulator/internal/network"
)

func TestWireCodecNominateRoundTrip(t *testing.T) {
	codec := network.NewWireCodec()
	v := consensus.NewValue(consensus.NewTransaction([]byte("a")), consensus.NewTransaction([]byte("b")))
	env := consensus.NominateEnvelope{From: "node-a", Voted: []consensus.Value{v}}

	encoded, err := codec.EncodeNominate(env)
	if err != nil {
		t.Fatalf("EncodeNominate: %v", err)
	}
	decoded, err := codec.DecodeNominate(encoded)
	if err != nil {
		t.Fatalf("DecodeNominate: %v", err)
	}

	if decoded.From != env.From {
		t.Errorf("From = %q, want %q", decoded.From, env.From)
	}
	if len(decoded.Voted) != 1 || !decoded.Voted[0].Equal(v) {
		t.Errorf("expected decoded Voted value to equal the original")
	}
}

func TestWireCodecPrepareRoundTrip(t *testing.T) {
	codec := network.NewWireCodec()
	v := consensus.NewValue(consensus.NewTransaction([]byte("x")))
	env := consensus.PrepareEnvelope{
		From:     "node-b",
		Ballot:   consensus.NewBallot(3, v),
		ACounter: 1,
		CCounter: 2,
		HCounter: 3,
	}

	encoded, err := codec.EncodePrepare(env)
	if err != nil {
		t.Fatalf("EncodePrepare: %v", err)
	}
	decoded, err := codec.DecodePrepare(encoded)
	if err != nil {
		t.Fatalf("DecodePrepare: %v", err)
	}

	if !decoded.Ballot.Equal(env.Ballot) {
		t.Errorf("expected decoded ballot to equal the original")
	}
	if decoded.ACounter != env.ACounter || decoded.CCounter != env.CCounter || decoded.HCounter != env.HCounter {
		t.Errorf("expected watermark counters to survive the round trip")
	}
}

func TestWireCodecExternalizeRoundTrip(t *testing.T) {
	codec := network.NewWireCodec()
	v := consensus.NewValue(consensus.NewTransaction([]byte("z")))
	rec := consensus.ExternalizeRecord{
		From:      "node-c",
		Slot:      7,
		Ballot:    consensus.NewBallot(2, v),
		HCounter:  2,
		Timestamp: 12.5,
	}

	encoded, err := codec.EncodeExternalize(rec)
	if err != nil {
		t.Fatalf("EncodeExternalize: %v", err)
	}
	decoded, err := codec.DecodeExternalize(encoded)
	if err != nil {
		t.Fatalf("DecodeExternalize: %v", err)
	}

	if decoded.Slot != rec.Slot || decoded.Timestamp != rec.Timestamp {
		t.Errorf("expected slot and timestamp to survive the round trip")
	}
	if !decoded.Ballot.Equal(rec.Ballot) {
		t.Errorf("expected ballot to survive the round trip")
	}
}

func TestDeliverNominateWireDeliversAfterDelay(t *testing.T) {
	s := network.NewScheduler()
	links := network.NewLinks(s)
	links.Connect("a", "b", 0)
	codec := network.NewWireCodec()

	v := consensus.NewValue(consensus.NewTransaction([]byte("a")))
	env := consensus.NominateEnvelope{From: "a", Voted: []consensus.Value{v}}

	var received consensus.NominateEnvelope
	ok, err := links.DeliverNominateWire(codec, "a", "b", env, func(e consensus.NominateEnvelope) {
		received = e
	})
	if err != nil {
		t.Fatalf("DeliverNominateWire: %v", err)
	}
	if !ok {
		t.Fatalf("expected delivery to be scheduled over a connected link")
	}

	s.StepUntil(network.SimTime(1))
	if received.From != "a" || len(received.Voted) != 1 {
		t.Errorf("expected the handler to receive the decoded envelope")
	}
}
