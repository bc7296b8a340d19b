package aggregate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

func rtt(v float64) *float64 { return &v }

func TestBuildDescription(t *testing.T) {
	probes := []models.ProbeRecord{
		{
			Hop: 2, HopValid: true, HopRaw: "2", Protocol: "udp", ProbeIndex: 0, RTT: rtt(10),
			Latitude: 15, Longitude: 25,
			Extra: map[string]string{"ip": "1.2.3.4", "stats_avg": "11.5", "reached": "False"},
		},
		{
			Hop: 2, HopValid: true, HopRaw: "2", Protocol: "icmp", ProbeIndex: 1, RTT: rtt(20),
			Latitude: 15, Longitude: 25,
			Extra: map[string]string{"from": "1.2.3.4"},
		},
	}

	desc := BuildDescription(probes)
	if desc.Location != "15.00000, 25.00000" {
		t.Errorf("location = %q", desc.Location)
	}
	if desc.ProbeCount != 2 || len(desc.Probes) != 2 {
		t.Fatalf("expected both probes described, got %+v", desc)
	}
	if desc.RTT == nil || desc.RTT.Min != 10 || desc.RTT.Max != 20 || desc.RTT.Avg != 15 {
		t.Errorf("rtt summary = %+v", desc.RTT)
	}

	first := desc.Probes[0]
	if first.Summary != "Hop: 2, Prot: udp, Idx: 0, RTT: 10ms, From: 1.2.3.4" {
		t.Errorf("summary = %q", first.Summary)
	}
	var labels []string
	for _, f := range first.Fields {
		labels = append(labels, f.Label)
	}
	want := []string{"Hop", "Protocol", "Probe index", "Rtt", "Ip", "Reached", "Stats avg"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
	if !strings.Contains(desc.Probes[1].Summary, "From: 1.2.3.4") {
		t.Errorf("from should be used when ip is absent: %q", desc.Probes[1].Summary)
	}
}

func TestBuildDescriptionIsIdempotent(t *testing.T) {
	probes := []models.ProbeRecord{
		{Hop: 1, HopValid: true, Latitude: 1, Longitude: 2, Extra: map[string]string{"b": "2", "a": "1", "latitude": "1"}},
	}
	a := BuildDescription(probes)
	b := BuildDescription(probes)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("descriptions differ:\n%+v\n%+v", a, b)
	}
	for _, f := range a.Probes[0].Fields {
		if f.Label == "Latitude" {
			t.Error("geographic fields must not be repeated per probe")
		}
	}
}

func TestFriendlyLabel(t *testing.T) {
	if got := FriendlyLabel("stats_loss_rate"); got != "Stats loss rate" {
		t.Errorf("FriendlyLabel = %q", got)
	}
}
