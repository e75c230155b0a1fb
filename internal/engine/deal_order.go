package engine

import "math/rand/v2"

// BuildDealOrder is the pass-the-device sequence: seats in index order.
func BuildDealOrder(count int) []int {
	order := make([]int, 0, max(count, 0))
	for i := 0; i < count; i++ {
		order = append(order, i)
	}
	return order
}

// PickImpostors draws min(k, n) distinct seats uniformly at random from
// [0, n). At least one seat is drawn when n > 0.
func PickImpostors(rng *rand.Rand, n, k int) []int {
	if n <= 0 {
		return []int{}
	}
	total := max(1, min(k, n))

	seats := BuildDealOrder(n)
	rng.Shuffle(len(seats), func(i, j int) {
		seats[i], seats[j] = seats[j], seats[i]
	})
	return seats[:total:total]
}
