package bytesize

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"1024B", 1024, false},
		{"1Ki", KiB, false},
		{"100MiB", 100 * MiB, false},
		{"1gi", GiB, false},
		{"1K", 1000, false},
		{"100MB", 100 * MB, false},
		{" 2 Gi ", 2 * GiB, false},
		{"1.5Gi", GiB + GiB/2, false},
		{"", 0, true},
		{"Gi", 0, true},
		{"10XB", 0, true},
		{"-1", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, in := range []ByteSize{0, 1, 1000, KiB, 3 * MiB, GiB, 2 * TiB} {
		text, err := in.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var out ByteSize
		if err := out.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if out != in {
			t.Errorf("round trip %d -> %q -> %d", in, text, out)
		}
	}
}

func TestString(t *testing.T) {
	tests := map[ByteSize]string{
		0:         "0",
		512:       "512",
		KiB:       "1Ki",
		1536:      "1536",
		GiB:       "1Gi",
		10 * MiB:  "10Mi",
		TiB + KiB: "1073741825Ki",
	}
	for in, want := range tests {
		if got := in.String(); got != want {
			t.Errorf("ByteSize(%d).String() = %q, want %q", uint64(in), got, want)
		}
	}
}
