package static_pipeline

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"math/rand"
	"testing"
)

func benchmarkPayloads() [][]byte {
	sizes := []int{512, 4 << 10, 64 << 10, 512 << 10}
	payloads := make([][]byte, len(sizes))
	for i, size := range sizes {
		payloads[i] = make([]byte, size)
		rand.Read(payloads[i])
	}
	return payloads
}

// BenchmarkContentHash compares the content address hash against common digests.
func BenchmarkContentHash(b *testing.B) {
	payloads := benchmarkPayloads()

	b.Run("XXH3", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = HashContent(payloads[i%len(payloads)])
		}
	})

	b.Run("MD5", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fmt.Sprintf("%x", md5.Sum(payloads[i%len(payloads)]))
		}
	})

	b.Run("SHA256", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fmt.Sprintf("%x", sha256.Sum256(payloads[i%len(payloads)]))
		}
	})
}

func BenchmarkArtifactKey(b *testing.B) {
	payloads := benchmarkPayloads()
	for i := 0; i < b.N; i++ {
		_ = ArtifactKey("site/css/main.css", payloads[i%len(payloads)])
	}
}
