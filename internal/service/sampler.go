package service

import "math/rand"

// SampleRecipients picks n distinct IDs uniformly at random. A nil n, or one
// at least as large as the pool, selects everybody. The input is not modified.
func SampleRecipients(ids []string, n *int, rng *rand.Rand) []string {
	out := append([]string(nil), ids...)
	if n == nil || *n >= len(out) {
		return out
	}
	if *n <= 0 {
		return []string{}
	}

	// partial Fisher-Yates: the first k slots end up a uniform k-subset
	k := *n
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:k]
}
