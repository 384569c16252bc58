package scd4x

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// crc8 is the Sensirion checksum: polynomial 0x31, init 0xff, no reflection.
func crc8(data []byte) byte {
	crc := byte(0xff)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// decodeWords splits buf into big endian words, each followed by its CRC.
func decodeWords(buf []byte, words []uint16) error {
	if len(buf) != 3*len(words) {
		return fmt.Errorf("short read: %d bytes for %d words", len(buf), len(words))
	}
	for i := range words {
		chunk := buf[3*i : 3*i+3]
		if got := crc8(chunk[:2]); got != chunk[2] {
			return fmt.Errorf("crc mismatch on word %d: got %#02x, want %#02x", i, chunk[2], got)
		}
		words[i] = uint16(chunk[0])<<8 | uint16(chunk[1])
	}
	return nil
}

// decodeMeasurement converts the raw read_measurement words.
//
// T = -45 + 175 * raw / 2^16 °C, RH = 100 * raw / 2^16 %.
func decodeMeasurement(w [3]uint16) Measurement {
	celsius := -45 + 175*float64(w[1])/65536
	rh := 100 * float64(w[2]) / 65536
	return Measurement{
		CO2:         w[0],
		Temperature: physic.ZeroCelsius + physic.Temperature(celsius*float64(physic.Kelvin)),
		Humidity:    physic.RelativeHumidity(rh * float64(physic.PercentRH)),
	}
}
