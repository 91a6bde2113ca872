package vector

import (
	"fmt"
	"math/rand"
	"testing"
)

func BenchmarkIndex_Search(b *testing.B) {
	const dim = 768
	r := rand.New(rand.NewSource(1))
	s := NewStore()
	for i := 0; i < 10000; i++ {
		v := make([]float32, dim)
		for j := range v {
			v[j] = r.Float32()*2 - 1
		}
		_ = s.Add(rec("normal", fmt.Sprintf("statement %d", i), v...))
	}
	idx := NewIndex(s)
	query := make([]float32, dim)
	for j := range query {
		query[j] = r.Float32()*2 - 1
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.Search(query, 5); err != nil {
			b.Fatal(err)
		}
	}
}
