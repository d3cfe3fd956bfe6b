package audio

// Upsample8kTo16k doubles the sample rate of a mono PCM buffer using linear
// interpolation: each input sample is emitted followed by the midpoint to its
// successor. The final sample has no successor within the buffer, so it is
// emitted twice, a simplification that keeps each frame
// independent at the cost of a possible small discontinuity at frame
// boundaries (see [UpsampleContinuous]).
//
// The output is always exactly twice the length of the input; an empty input
// yields an empty output.
func Upsample8kTo16k(pcm []int16) []int16 {
	if len(pcm) == 0 {
		return nil
	}
	out := make([]int16, len(pcm)*2)
	for i, s := range pcm {
		out[i*2] = s
		if i+1 < len(pcm) {
			out[i*2+1] = int16((int32(s) + int32(pcm[i+1])) / 2)
		} else {
			out[i*2+1] = s
		}
	}
	return out
}

// UpsampleContinuous is the stateful variant of [Upsample8kTo16k] for callers
// that carry the previous frame's trailing sample across frame boundaries.
// The interpolation grid shifts half an input sample: the first output is the
// midpoint between prev and pcm[0], and every input sample is followed by its
// successor midpoint, ending on pcm[len-1]. Output length is still exactly
// 2·len(pcm), so per-frame accounting is identical to the stateless path.
func UpsampleContinuous(prev int16, pcm []int16) []int16 {
	if len(pcm) == 0 {
		return nil
	}
	out := make([]int16, len(pcm)*2)
	last := prev
	for i, s := range pcm {
		out[i*2] = int16((int32(last) + int32(s)) / 2)
		out[i*2+1] = s
		last = s
	}
	return out
}

// Downsample16kTo8k halves the sample rate by decimation, dropping every
// other sample. Used on the outbound leg before µ-law compression. For an
// odd-length input the trailing sample is dropped.
func Downsample16kTo8k(pcm []int16) []int16 {
	if len(pcm) == 0 {
		return nil
	}
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = pcm[i*2]
	}
	return out
}
