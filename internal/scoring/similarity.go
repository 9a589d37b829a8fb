package scoring

import "math"

// CosineSimilarity compares two embeddings and rescales the cosine from [-1, 1] to [0, 100].
// Returns Neutral when the vectors differ in length, are empty, or either has zero norm.
func CosineSimilarity(a, b []float32) int {
	if len(a) == 0 || len(a) != len(b) {
		return Neutral
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return Neutral
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cos) || math.IsInf(cos, 0) {
		return Neutral
	}
	// Floating point error can push the cosine slightly outside [-1, 1]
	cos = math.Max(-1, math.Min(1, cos))

	return toScore(((cos + 1) / 2) * 100)
}

// SkillSimilarity scores content similarity between candidate and opportunity embeddings.
// A nil embedding means it was unavailable and yields Neutral.
func SkillSimilarity(candidate, opportunity []float32) int {
	if candidate == nil || opportunity == nil {
		return Neutral
	}
	return CosineSimilarity(candidate, opportunity)
}
