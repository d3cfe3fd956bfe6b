package audio

// G.711 µ-law companding, reconstructed arithmetically rather than through
// the usual 256-entry lookup table. The codec stores samples bit-inverted,
// and its sign convention is inverted relative to the literal sign bit: a
// clear bit 7 (after complementing) marks a negative sample.

// muLawBias is the bias constant of the expansion formula.
const muLawBias = 33

// muLawMax is the largest magnitude the code space can represent
// (exponent 7, mantissa 15). Samples beyond it compress to the top code.
const muLawMax = 15<<10 + muLawBias<<7

// DecodeSample expands a single µ-law byte to a signed 16-bit PCM sample.
// Decoding is total: every byte value 0–255 is a valid code.
func DecodeSample(code byte) int16 {
	code = ^code
	sign := code & 0x80
	exponent := (code >> 4) & 0x07
	mantissa := code & 0x0F

	magnitude := int32(mantissa)<<(exponent+3) + muLawBias<<exponent
	if sign == 0 {
		magnitude = -magnitude
	}

	// The reconstruction formula can overshoot slightly at the top exponent.
	if magnitude > 32767 {
		magnitude = 32767
	} else if magnitude < -32767 {
		magnitude = -32767
	}
	return int16(magnitude)
}

// EncodeSample compresses a signed 16-bit PCM sample to a µ-law byte using
// the same bias and inversion convention as [DecodeSample]. It picks the code
// whose expansion lies closest to the input, so encoding a decoded sample
// recovers the original byte exactly.
func EncodeSample(sample int16) byte {
	sign := byte(0x80) // set bit ⇒ positive, per the codec's inverted convention
	magnitude := int32(sample)
	if magnitude < 0 {
		sign = 0
		magnitude = -magnitude
	}
	if magnitude > muLawMax {
		magnitude = muLawMax
	}

	best := byte(0)
	bestErr := int32(1) << 30
	for exponent := uint(0); exponent < 8; exponent++ {
		base := int32(muLawBias) << exponent
		mantissa := (magnitude - base) >> (exponent + 3)
		if mantissa < 0 {
			mantissa = 0
		} else if mantissa > 15 {
			mantissa = 15
		}
		reconstructed := mantissa<<(exponent+3) + base
		diff := reconstructed - magnitude
		if diff < 0 {
			diff = -diff
		}
		if diff < bestErr {
			bestErr = diff
			best = byte(exponent)<<4 | byte(mantissa)
		}
	}

	return ^(sign | best)
}

// DecodeMuLaw expands a buffer of µ-law bytes to 8 kHz PCM. The output always
// contains exactly one sample per input byte.
func DecodeMuLaw(mulaw []byte) []int16 {
	pcm := make([]int16, len(mulaw))
	for i, b := range mulaw {
		pcm[i] = DecodeSample(b)
	}
	return pcm
}

// EncodeMuLaw compresses a buffer of 8 kHz PCM samples to µ-law bytes, one
// byte per sample.
func EncodeMuLaw(pcm []int16) []byte {
	mulaw := make([]byte, len(pcm))
	for i, s := range pcm {
		mulaw[i] = EncodeSample(s)
	}
	return mulaw
}
