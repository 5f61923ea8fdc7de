package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/treasureakintoye/ambradio-dashboard/internal/config"
)

func TestNewServicePicksBackend(t *testing.T) {
	logger := zerolog.Nop()

	svc, err := NewService(&config.Config{MediaRoot: t.TempDir()}, logger)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, ok := svc.storage.(*FilesystemStorage); !ok {
		t.Errorf("storage type = %T, want *FilesystemStorage", svc.storage)
	}

	svc, err = NewService(&config.Config{
		S3Bucket:          "ambradio-media",
		S3Region:          "us-east-1",
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	}, logger)
	if err != nil {
		t.Fatalf("NewService with S3: %v", err)
	}
	if _, ok := svc.storage.(*S3Storage); !ok {
		t.Errorf("storage type = %T, want *S3Storage", svc.storage)
	}
}

func TestBuildMediaKey(t *testing.T) {
	tests := []struct {
		name      string
		mediaID   string
		extension string
		expected  string
	}{
		{
			name:      "standard key",
			mediaID:   "abcd1234efgh5678",
			extension: ".mp3",
			expected:  "media/ab/cd/abcd1234efgh5678.mp3",
		},
		{
			name:      "short id",
			mediaID:   "abc",
			extension: ".flac",
			expected:  "media/abc.flac",
		},
		{
			name:      "exactly 4 chars",
			mediaID:   "abcd",
			extension: ".wav",
			expected:  "media/ab/cd/abcd.wav",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildMediaKey(tt.mediaID, tt.extension); got != tt.expected {
				t.Errorf("buildMediaKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"song.MP3", ".mp3"},
		{"dir/track.ogg", ".ogg"},
		{"noext", ".audio"},
		{"", ".audio"},
	}
	for _, tt := range tests {
		if got := extensionOf(tt.in); got != tt.want {
			t.Errorf("extensionOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilesystemStorageRoundTrip(t *testing.T) {
	root := t.TempDir()
	fs := NewFilesystemStorage(root, zerolog.Nop())
	ctx := context.Background()

	key := buildMediaKey("abcd1234", ".mp3")
	if err := fs.Store(ctx, key, strings.NewReader("audio bytes")); err != nil {
		t.Fatalf("Store: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("unexpected file contents %q", data)
	}

	if err := fs.CheckAccess(ctx); err != nil {
		t.Errorf("CheckAccess: %v", err)
	}

	if err := fs.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := fs.Delete(ctx, key); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestStorageURL(t *testing.T) {
	t.Run("filesystem", func(t *testing.T) {
		fs := NewFilesystemStorage("/srv/media", zerolog.Nop())
		if got := fs.URL("media/ab/cd/file.mp3"); got != "media/ab/cd/file.mp3" {
			t.Errorf("URL() = %v", got)
		}
	})

	t.Run("s3 with endpoint", func(t *testing.T) {
		s := &S3Storage{config: S3Config{Endpoint: "https://s3.example.com", Bucket: "my-bucket"}}
		want := "https://s3.example.com/my-bucket/media/ab/cd/file.mp3"
		if got := s.URL("media/ab/cd/file.mp3"); got != want {
			t.Errorf("URL() = %v, want %v", got, want)
		}
	})

	t.Run("s3 with cdn", func(t *testing.T) {
		s := &S3Storage{config: S3Config{PublicBaseURL: "https://cdn.example.com/", Bucket: "my-bucket"}}
		want := "https://cdn.example.com/media/ab/cd/file.mp3"
		if got := s.URL("media/ab/cd/file.mp3"); got != want {
			t.Errorf("URL() = %v, want %v", got, want)
		}
	})

	t.Run("s3 default", func(t *testing.T) {
		s := &S3Storage{config: S3Config{Bucket: "my-bucket", Region: "eu-west-1"}}
		want := "https://my-bucket.s3.eu-west-1.amazonaws.com/media/ab/cd/file.mp3"
		if got := s.URL("media/ab/cd/file.mp3"); got != want {
			t.Errorf("URL() = %v, want %v", got, want)
		}
	})
}
