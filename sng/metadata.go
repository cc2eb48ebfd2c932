package sng

import (
	"fmt"

	"github.com/rocksmith-tools/rsarc/internal/binreader"
)

// Metadata is the final, single record of an SNG document: song-level
// scoring constants, capo/tuning info, and song length.
type Metadata struct {
	MaxScore               float64
	MaxNotesAndChords      float64
	MaxNotesAndChordsReal  float64
	PointsPerNote          float64
	FirstBeatLength        float32
	StartTime              float32
	CapoFretId             uint8
	LastConversionDateTime string // char[32]
	Part                   int16
	SongLength             float32
	StringCount            int32
	Tuning                 []int16 // i16[stringCount]
	Unk11                  float32
	Unk12                  float32
	MaxDifficulty          int32
}

func readMetadata(r *binreader.Reader) (Metadata, error) {
	var v Metadata
	var err error
	if v.MaxScore, err = r.F64LE(); err != nil {
		return v, err
	}
	if v.MaxNotesAndChords, err = r.F64LE(); err != nil {
		return v, err
	}
	if v.MaxNotesAndChordsReal, err = r.F64LE(); err != nil {
		return v, err
	}
	if v.PointsPerNote, err = r.F64LE(); err != nil {
		return v, err
	}
	if v.FirstBeatLength, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.StartTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.CapoFretId, err = r.U8(); err != nil {
		return v, err
	}
	if v.LastConversionDateTime, err = r.FixedString(32); err != nil {
		return v, err
	}
	if v.Part, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.SongLength, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.StringCount, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.StringCount < 0 || v.StringCount > maxArrayCount {
		return v, fmt.Errorf("%w: metadata stringCount %d out of range", ErrMalformed, v.StringCount)
	}
	v.Tuning = make([]int16, v.StringCount)
	for i := range v.Tuning {
		if v.Tuning[i], err = r.I16LE(); err != nil {
			return v, err
		}
	}
	if v.Unk11, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Unk12, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.MaxDifficulty, err = r.I32LE(); err != nil {
		return v, err
	}
	return v, nil
}
