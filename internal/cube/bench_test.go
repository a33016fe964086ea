package cube

import (
	"math/rand"
	"testing"
)

func randomPoints(rng *rand.Rand, widths []int, n int) [][]uint64 {
	points := make([][]uint64, n)
	for i := range points {
		addr := make([]uint64, len(widths))
		for d, w := range widths {
			addr[d] = uint64(rng.Intn(1 << w))
		}
		points[i] = addr
	}
	return points
}

func BenchmarkInsert_Nanocube(b *testing.B) {
	widths := []int{16, 16}
	points := randomPoints(rand.New(rand.NewSource(1)), widths, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		c, _ := New[Count](widths)
		b.StartTimer()
		for _, p := range points {
			if err := c.Insert(p, 1); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkInsert_Garbage(b *testing.B) {
	widths := []int{16, 16}
	points := randomPoints(rand.New(rand.NewSource(1)), widths, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		c, _ := New[Count](widths)
		b.StartTimer()
		for _, p := range points {
			if err := c.InsertGarbage(p, 1); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkRangeQuery(b *testing.B) {
	widths := []int{16, 16}
	rng := rand.New(rand.NewSource(2))
	c, _ := New[Count](widths)
	for _, p := range randomPoints(rng, widths, 8192) {
		if err := c.Insert(p, 1); err != nil {
			b.Fatal(err)
		}
	}
	bounds := make([][][2]uint64, 256)
	for i := range bounds {
		bounds[i] = [][2]uint64{sortedPair(rng, 1 << 16), sortedPair(rng, 1 << 16)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var p CombinePolicy[Count]
		if err := c.RangeQuery(&p, bounds[i%len(bounds)]); err != nil {
			b.Fatal(err)
		}
	}
}
