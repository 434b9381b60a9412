package models

// DispositionIgnored marks a detection that no scoring rule claimed, either
// because every keyword missed or every confidence gate failed. Evaluation
// relies on this exact sentinel to tell "ignored" apart from a scored match.
const DispositionIgnored = "IGNORED (below threshold or no match)"

// Stat names that every session carries, even when the active rule set never
// increments them. Downstream consumers index into the stats map by name.
var StatNames = []string{"points", "assists", "steals", "blocks", "rebounds"}

// Detection is one above-threshold classification, annotated by the stats
// engine with the human-readable outcome of rule matching.
type Detection struct {
	Timestamp    float64 `json:"timestamp"`
	Frame        int     `json:"frame"`
	Action       string  `json:"detected_action"`
	Confidence   float64 `json:"confidence"`
	ClassifiedAs string  `json:"classified_as"`
	FrameImage   string  `json:"frame_image"`
	SessionID    string  `json:"session_id"`
}

// Scored reports whether the detection was claimed by at least one scoring
// rule. Dispositions of scored detections always carry the awarded points in
// the form "(+N".
func (d Detection) Scored() bool {
	return d.ClassifiedAs != "" && d.ClassifiedAs != DispositionIgnored
}

// SessionRecord is the self-contained result of one analysis run, serialized
// as a single line of the session log.
type SessionRecord struct {
	SessionID       string         `json:"session_id"`
	Timestamp       string         `json:"timestamp"`
	VideoDuration   float64        `json:"video_duration"`
	TotalDetections int            `json:"total_detections"`
	ClassifierUsed  string         `json:"classifier_used"`
	Stats           map[string]int `json:"stats"`
	Detections      []Detection    `json:"detections"`
	Evaluation      *Score         `json:"evaluation,omitempty"`
}
