package audio

import "math"

// DefaultSilenceThreshold is the default RMS level below which a buffer is
// classified as silent. The unit is the raw 16-bit sample scale (not dBFS);
// the value is empirically chosen for typical carrier noise floors.
const DefaultSilenceThreshold = 200

// RMS computes the root-mean-square amplitude of a PCM buffer. An empty
// buffer has RMS 0.
func RMS(pcm []int16) float64 {
	if len(pcm) == 0 {
		return 0
	}
	var sum float64
	for _, s := range pcm {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(pcm)))
}

// SilenceDetector classifies PCM buffers as silent or not by comparing their
// RMS amplitude against a threshold. It works on buffers at any sample rate.
//
// The threshold is explicit configuration rather than an ambient constant so
// that deployments can tune it per carrier (noise floors vary). The zero
// value uses [DefaultSilenceThreshold]. A SilenceDetector holds no state and
// is safe for concurrent use.
type SilenceDetector struct {
	// Threshold is the RMS level below which a buffer is silent. Values
	// ≤ 0 fall back to DefaultSilenceThreshold.
	Threshold float64
}

// IsSilent reports whether the buffer's RMS amplitude is strictly below the
// detector's threshold. An empty buffer is classified as silent: its RMS
// carries no evidence of speech.
func (d SilenceDetector) IsSilent(pcm []int16) bool {
	th := d.Threshold
	if th <= 0 {
		th = DefaultSilenceThreshold
	}
	return RMS(pcm) < th
}
