package web

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"html/template"
	"math"
)

// beepURI is a short 880Hz tone played when a login is rejected.
var beepURI = template.URL("data:audio/wav;base64," + base64.StdEncoding.EncodeToString(beepWAV(880, 0.2, 8000)))

// beepWAV renders an 8-bit mono PCM sine tone as a WAV file.
func beepWAV(freq, seconds float64, rate int) []byte {
	n := int(seconds * float64(rate))
	samples := make([]byte, n)
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
		samples[i] = byte(128 + 100*v)
	}

	var buf bytes.Buffer
	w := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	buf.WriteString("RIFF")
	w(uint32(36 + n))
	buf.WriteString("WAVEfmt ")
	w(uint32(16))     // fmt chunk size
	w(uint16(1))      // PCM
	w(uint16(1))      // mono
	w(uint32(rate))   // sample rate
	w(uint32(rate))   // byte rate
	w(uint16(1))      // block align
	w(uint16(8))      // bits per sample
	buf.WriteString("data")
	w(uint32(n))
	buf.Write(samples)
	return buf.Bytes()
}
