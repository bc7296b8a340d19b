package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jengzang/tracemap-backend-go/internal/models"
	"github.com/jengzang/tracemap-backend-go/internal/stats"
)

// geographic fields are shown once at the point level
var geoKeys = map[string]bool{
	"lat":       true,
	"lon":       true,
	"latitude":  true,
	"longitude": true,
}

// coreKeys are rendered ahead of the pass-through columns
var coreKeys = map[string]bool{
	"hop":         true,
	"protocol":    true,
	"probe_index": true,
	"rtt":         true,
}

// BuildDescription renders the merged info payload for the probes at one point.
// The result depends only on the probe list and its order.
func BuildDescription(probes []models.ProbeRecord) models.PointDescription {
	desc := models.PointDescription{
		ProbeCount: len(probes),
		Probes:     make([]models.ProbeDescription, 0, len(probes)),
	}
	if len(probes) == 0 {
		return desc
	}

	first := probes[0]
	desc.Location = fmt.Sprintf("%.5f, %.5f", first.Latitude, first.Longitude)

	var rtts []float64
	for _, p := range probes {
		if p.RTT != nil {
			rtts = append(rtts, *p.RTT)
		}
		desc.Probes = append(desc.Probes, describeProbe(p))
	}

	if s := stats.Summarize(rtts); s.Count > 0 {
		desc.RTT = &models.RTTSummary{
			Count: s.Count,
			Min:   stats.Round(s.Min, 3),
			Avg:   stats.Round(s.Mean, 3),
			Max:   stats.Round(s.Max, 3),
		}
	}

	return desc
}

func describeProbe(p models.ProbeRecord) models.ProbeDescription {
	hop := hopText(p)
	idx := indexText(p)
	rtt := rttText(p)

	summary := fmt.Sprintf("Hop: %s, Prot: %s, Idx: %s", hop, p.Protocol, idx)
	if rtt != "" {
		summary += fmt.Sprintf(", RTT: %sms", rtt)
	}
	if src := p.Source(); src != "" {
		summary += ", From: " + src
	}

	fields := []models.DescriptionField{
		{Label: FriendlyLabel("hop"), Value: hop},
		{Label: FriendlyLabel("protocol"), Value: p.Protocol},
		{Label: FriendlyLabel("probe_index"), Value: idx},
	}
	if rtt != "" {
		fields = append(fields, models.DescriptionField{Label: FriendlyLabel("rtt"), Value: rtt})
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		if coreKeys[k] || geoKeys[strings.ToLower(k)] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, models.DescriptionField{Label: FriendlyLabel(k), Value: p.Extra[k]})
	}

	return models.ProbeDescription{Summary: summary, Fields: fields}
}

func hopText(p models.ProbeRecord) string {
	if p.HopRaw != "" {
		return p.HopRaw
	}
	if p.HopValid {
		return strconv.Itoa(p.Hop)
	}
	return ""
}

func indexText(p models.ProbeRecord) string {
	if raw, ok := p.Extra["probe_index"]; ok {
		return raw
	}
	return strconv.Itoa(p.ProbeIndex)
}

func rttText(p models.ProbeRecord) string {
	if p.RTT != nil {
		return strconv.FormatFloat(*p.RTT, 'f', -1, 64)
	}
	return p.Extra["rtt"]
}

// FriendlyLabel turns a column name into a display label: "probe_index" -> "Probe index"
func FriendlyLabel(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + strings.ReplaceAll(key[1:], "_", " ")
}
