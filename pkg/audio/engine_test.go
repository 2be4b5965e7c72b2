package audio

import "testing"

func TestPassthroughCopiesMatchingChannels(t *testing.T) {
	in := [][]float32{{1, 2, 3}, {4, 5, 6}}
	out := [][]float32{{0, 0, 0}, {0, 0, 0}}

	passthrough(in, out)

	for ch := range in {
		for i := range in[ch] {
			if out[ch][i] != in[ch][i] {
				t.Errorf("ch %d sample %d: got %v, want %v", ch, i, out[ch][i], in[ch][i])
			}
		}
	}
}

func TestPassthroughZerosExtraOutputChannels(t *testing.T) {
	in := [][]float32{{1, 1}}
	out := [][]float32{{9, 9}, {9, 9}}

	passthrough(in, out)

	if out[0][0] != 1 {
		t.Errorf("expected channel 0 copied from input, got %v", out[0])
	}
	for _, v := range out[1] {
		if v != 0 {
			t.Errorf("expected extra output channel zeroed, got %v", out[1])
		}
	}
}

func TestPassthroughHandlesFewerOutputsThanInputs(t *testing.T) {
	in := [][]float32{{1}, {2}, {3}}
	out := [][]float32{{0}}

	passthrough(in, out)

	if out[0][0] != 1 {
		t.Errorf("expected only channel 0 copied, got %v", out[0])
	}
}
