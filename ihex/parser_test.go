package ihex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Image
		wantErr bool
		errMsg  string
	}{
		{
			name: "single record",
			input: ":0400000001020304F2\n" +
				":00000001FF\n",
			want: &Image{
				Segments: []*Segment{
					{Address: 0x0000, Data: []byte{0x01, 0x02, 0x03, 0x04}},
				},
			},
		},
		{
			name: "contiguous records merge",
			input: ":0400000001020304F2\n" +
				":0400040005060708DE\n" +
				":00000001FF\n",
			want: &Image{
				Segments: []*Segment{
					{Address: 0x0000, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
				},
			},
		},
		{
			name: "gap starts a new segment",
			input: ":0400000001020304F2\n" +
				":02001000AABB89\n" +
				":00000001FF\n",
			want: &Image{
				Segments: []*Segment{
					{Address: 0x0000, Data: []byte{1, 2, 3, 4}},
					{Address: 0x0010, Data: []byte{0xAA, 0xBB}},
				},
			},
		},
		{
			name: "extended linear address",
			input: ":020000040001F9\n" +
				":0400000001020304F2\n" +
				":00000001FF\n",
			want: &Image{
				Segments: []*Segment{
					{Address: 0x00010000, Data: []byte{1, 2, 3, 4}},
				},
			},
		},
		{
			name: "extended segment address",
			input: ":020000021000EC\n" +
				":02001000AABB89\n" +
				":00000001FF\n",
			want: &Image{
				Segments: []*Segment{
					{Address: 0x00010010, Data: []byte{0xAA, 0xBB}},
				},
			},
		},
		{
			name: "start linear address",
			input: ":0400000508000123CB\n" +
				":00000001FF\n",
			want: &Image{Start: 0x08000123, HasStart: true},
		},
		{
			name: "start segment address",
			input: ":0400000300001234B3\n" +
				":00000001FF\n",
			want: &Image{Start: 0x00001234, HasStart: true},
		},
		{
			name: "empty lines and trailing data after EOF",
			input: "\n" +
				":0400000001020304F2\n" +
				"\n" +
				":00000001FF\n" +
				"garbage\n",
			want: &Image{
				Segments: []*Segment{
					{Address: 0x0000, Data: []byte{1, 2, 3, 4}},
				},
			},
		},
		{
			name:    "missing EOF",
			input:   ":0400000001020304F2\n",
			wantErr: true,
			errMsg:  "missing end of file record",
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: true,
			errMsg:  "missing end of file record",
		},
		{
			name:    "bad checksum",
			input:   ":0400000001020304F3\n",
			wantErr: true,
			errMsg:  "line 1: checksum mismatch",
		},
		{
			name:    "missing start code",
			input:   "0400000001020304F2\n",
			wantErr: true,
			errMsg:  "must start with ':'",
		},
		{
			name:    "unknown record type",
			input:   ":00000006FA\n",
			wantErr: true,
			errMsg:  "unknown record type 0x06",
		},
		{
			name:    "length mismatch",
			input:   ":0500000001020304F1\n",
			wantErr: true,
			errMsg:  "data length mismatch",
		},
		{
			name:    "invalid hex",
			input:   ":04000000010203ZZF2\n",
			wantErr: true,
			errMsg:  "invalid hex data",
		},
		{
			name:    "record too short",
			input:   ":0000\n",
			wantErr: true,
			errMsg:  "record too short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReader(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseReader() error = nil, want error containing %q", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseReader() error = %q, want error containing %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReader() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseReader() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(":0300300002337A1E")
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}

	want := &Record{
		Type:     RecordData,
		Address:  0x0030,
		Data:     []byte{0x02, 0x33, 0x7A},
		Checksum: 0x1E,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("ParseRecord() mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{"empty", nil, 0x00},
		{"eof record", []byte{0x00, 0x00, 0x00, 0x01}, 0xFF},
		{"data record", []byte{0x04, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04}, 0xF2},
		{"wraps", []byte{0xFF, 0x02}, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateChecksum(tt.data); got != tt.want {
				t.Errorf("calculateChecksum() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.hex")
	content := ":0400000001020304F2\n:00000001FF\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if img.Size() != 4 {
		t.Errorf("Size() = %d, want 4", img.Size())
	}

	if _, err := Parse(filepath.Join(t.TempDir(), "missing.hex")); err == nil {
		t.Error("Parse() of a missing file should fail")
	}
}

func TestImageBounds(t *testing.T) {
	img := &Image{}
	if low, high := img.Bounds(); low != 0 || high != 0 {
		t.Errorf("empty Bounds() = %d, %d, want 0, 0", low, high)
	}

	img.add(0x100, []byte{1, 2})
	img.add(0x102, []byte{3})
	img.add(0x10, []byte{4, 5, 6, 7})

	if len(img.Segments) != 2 {
		t.Fatalf("len(Segments) = %d, want 2", len(img.Segments))
	}
	low, high := img.Bounds()
	if low != 0x10 || high != 0x103 {
		t.Errorf("Bounds() = 0x%X, 0x%X, want 0x10, 0x103", low, high)
	}
	if img.Size() != 7 {
		t.Errorf("Size() = %d, want 7", img.Size())
	}
}
