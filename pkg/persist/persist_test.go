package persist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ripplestate/ripple/pkg/store"
)

func TestMemStoreRoundTrip(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	in := map[string]any{
		"count": 3,
		"user":  map[string]any{"name": "Burt Macklin"},
	}
	if err := ms.Save(ctx, "app", in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := ms.Load(ctx, "app")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if out["count"] != float64(3) {
		t.Errorf("count = %v, want 3 with wire numeric type", out["count"])
	}
	user, ok := out["user"].(map[string]any)
	if !ok || user["name"] != "Burt Macklin" {
		t.Errorf("user = %v, want nested map preserved", out["user"])
	}
}

func TestMemStoreLoadMissingKey(t *testing.T) {
	ms := NewMemStore()

	if _, err := ms.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() = %v, want ErrNotFound", err)
	}
}

func TestMemStoreLoadIsDetached(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	ms.Save(ctx, "app", map[string]any{"count": 1})

	first, _ := ms.Load(ctx, "app")
	first["count"] = 99

	second, _ := ms.Load(ctx, "app")
	if second["count"] != float64(1) {
		t.Errorf("count = %v, want loads independent of each other", second["count"])
	}
}

func TestCheckpointAndHydrate(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	src := store.New(nil)
	src.Set("count", 5)
	src.Set("label", "ready")
	if err := Checkpoint(ctx, ms, "app", src); err != nil {
		t.Fatalf("Checkpoint() error: %v", err)
	}

	dst := store.New(nil)
	dst.Set("doubled", store.Compute(func() any {
		if n, ok := dst.Get("count").(float64); ok {
			return n * 2
		}
		return float64(0)
	}))
	if err := Hydrate(ctx, ms, "app", dst); err != nil {
		t.Fatalf("Hydrate() error: %v", err)
	}

	if dst.Peek("count") != float64(5) {
		t.Errorf("count = %v, want 5", dst.Peek("count"))
	}
	if dst.Peek("label") != "ready" {
		t.Errorf("label = %v, want %q", dst.Peek("label"), "ready")
	}
	if dst.Get("doubled") != float64(10) {
		t.Errorf("doubled = %v, want derived from the restored data", dst.Get("doubled"))
	}
}

func TestHydrateMissingKey(t *testing.T) {
	st := store.New(nil)
	err := Hydrate(context.Background(), NewMemStore(), "nope", st)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Hydrate() = %v, want ErrNotFound", err)
	}
}

// fakeS3 records puts and serves gets from memory.
type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	ss := &S3Store{client: fake, bucket: "snapshots", prefix: "app/"}
	ctx := context.Background()

	if err := ss.Save(ctx, "main", map[string]any{"count": 4}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, ok := fake.objects["app/main"]; !ok {
		t.Fatalf("object keys = %v, want the prefix applied", fake.objects)
	}

	out, err := ss.Load(ctx, "main")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if out["count"] != float64(4) {
		t.Errorf("count = %v, want 4", out["count"])
	}

	if _, err := ss.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() = %v, want ErrNotFound for absent keys", err)
	}
}
