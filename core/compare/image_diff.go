package compare

import (
	"context"
	"fmt"

	"github.com/corona10/goimagehash"

	"github.com/benedoc-inc/pdfdiff/types"
)

// DefaultHashThreshold is the largest perceptual-hash distance at which two
// images are still considered the same
const DefaultHashThreshold = 5

// ImageDiffResult is the outcome of comparing the embedded images of one page
// pair. CountMismatch and Pairs are mutually exclusive: when the counts differ
// no pair is compared.
type ImageDiffResult struct {
	PageIndex     int               `json:"page_index"`
	CountMismatch bool              `json:"count_mismatch"`
	Count1        int               `json:"count1"`
	Count2        int               `json:"count2"`
	Pairs         []ImagePairResult `json:"pairs,omitempty"`
	Differs       bool              `json:"differs"`
}

// ImagePairResult is the distance between the images at one position
type ImagePairResult struct {
	Position int  `json:"position"` // Zero-based position on the page
	Distance int  `json:"distance"`
	Differs  bool `json:"differs"`
}

// ReportLines renders the count mismatch, or one line per differing pair
func (r *ImageDiffResult) ReportLines() []string {
	if r == nil {
		return nil
	}
	if r.CountMismatch {
		return []string{fmt.Sprintf("Page %d has different number of images: %d vs %d",
			r.PageIndex+1, r.Count1, r.Count2)}
	}
	var lines []string
	for _, p := range r.Pairs {
		if p.Differs {
			lines = append(lines, fmt.Sprintf("Page %d, image %d differs (phash difference: %d)",
				r.PageIndex+1, p.Position+1, p.Distance))
		}
	}
	return lines
}

// ImageHasher measures the visual distance between two images
type ImageHasher interface {
	Distance(ctx context.Context, a, b types.EmbeddedImage) (int, error)
}

// HashCache memoizes perceptual hashes by image digest
type HashCache interface {
	Get(ctx context.Context, key string) (uint64, bool, error)
	Put(ctx context.Context, key string, hash uint64) error
}

// PerceptualHasher compares images by the Hamming distance of their 64-bit
// DCT perceptual hashes
type PerceptualHasher struct {
	cache HashCache
}

// NewPerceptualHasher creates a hasher. cache may be nil.
func NewPerceptualHasher(cache HashCache) *PerceptualHasher {
	return &PerceptualHasher{cache: cache}
}

// Hash returns the perceptual hash of img, consulting the cache when the
// image carries a digest. Cache failures fall back to hashing.
func (h *PerceptualHasher) Hash(ctx context.Context, img types.EmbeddedImage) (*goimagehash.ImageHash, error) {
	if img.Image == nil {
		return nil, fmt.Errorf("image %d (%s) has no pixel data", img.Index, img.SourceID)
	}

	useCache := h.cache != nil && img.Digest != ""
	if useCache {
		if v, ok, err := h.cache.Get(ctx, img.Digest); err == nil && ok {
			return goimagehash.NewImageHash(v, goimagehash.PHash), nil
		}
	}

	hash, err := goimagehash.PerceptionHash(img.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to hash image %d (%s): %w", img.Index, img.SourceID, err)
	}

	if useCache {
		_ = h.cache.Put(ctx, img.Digest, hash.GetHash())
	}
	return hash, nil
}

// Distance implements ImageHasher
func (h *PerceptualHasher) Distance(ctx context.Context, a, b types.EmbeddedImage) (int, error) {
	hashA, err := h.Hash(ctx, a)
	if err != nil {
		return 0, err
	}
	hashB, err := h.Hash(ctx, b)
	if err != nil {
		return 0, err
	}
	return hashA.Distance(hashB)
}

// ImageDiffer pairs the images of two pages by position and flags pairs
// whose distance exceeds the threshold.
//
// Pairing is positional: images reordered on an otherwise unchanged page
// are reported as differences.
type ImageDiffer struct {
	hasher    ImageHasher
	threshold int
}

// NewImageDiffer creates an image differ
func NewImageDiffer(hasher ImageHasher, threshold int) *ImageDiffer {
	return &ImageDiffer{hasher: hasher, threshold: threshold}
}

// Diff compares the image lists of page pageIndex
func (d *ImageDiffer) Diff(ctx context.Context, pageIndex int, images1, images2 []types.EmbeddedImage) (*ImageDiffResult, error) {
	result := &ImageDiffResult{
		PageIndex: pageIndex,
		Count1:    len(images1),
		Count2:    len(images2),
	}

	if len(images1) != len(images2) {
		result.CountMismatch = true
		result.Differs = true
		return result, nil
	}

	for i := range images1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dist, err := d.hasher.Distance(ctx, images1[i], images2[i])
		if err != nil {
			return nil, types.WrapErrorf(types.ErrCodePageProcessing, err, "image %d", i+1)
		}
		pair := ImagePairResult{
			Position: i,
			Distance: dist,
			Differs:  dist > d.threshold,
		}
		if pair.Differs {
			result.Differs = true
		}
		result.Pairs = append(result.Pairs, pair)
	}

	return result, nil
}

// DiffImages compares two image lists with the perceptual hasher and the
// default threshold
func DiffImages(ctx context.Context, pageIndex int, images1, images2 []types.EmbeddedImage) (*ImageDiffResult, error) {
	return NewImageDiffer(NewPerceptualHasher(nil), DefaultHashThreshold).Diff(ctx, pageIndex, images1, images2)
}
