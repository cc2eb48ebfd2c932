package sng

import (
	"fmt"

	"github.com/rocksmith-tools/rsarc/internal/binreader"
)

// Note is the densest record in the schema: one played note or the note
// component of a chord, with fretting, timing, linking to neighboring
// notes/phrases, articulation flags, and a variable-length pitch-bend
// curve.
type Note struct {
	NoteMask          uint32
	NoteFlags         uint32
	Hash              uint32
	Time              float32
	StringIndex       uint8
	FretId            uint8
	AnchorFretId      uint8
	AnchorWidth       uint8
	ChordId           int32
	ChordNotesId      int32
	PhraseId          int32
	PhraseIterationId int32
	FingerPrintId     [2]int16
	NextIterNote      int16
	PrevIterNote      int16
	ParentPrevNote    int16
	SlideTo           uint8
	SlideUnpitchTo    uint8
	LeftHand          uint8
	Tap               uint8
	PickDirection     uint8
	Slap              uint8
	Pluck             uint8
	Vibrato           int16
	Sustain           float32
	MaxBend           float32

	// BendData32 is length-prefixed by BendDataCount.
	BendDataCount int32
	BendData32    []BendData32
}

func readNote(r *binreader.Reader) (Note, error) {
	var v Note
	var err error
	if v.NoteMask, err = r.U32LE(); err != nil {
		return v, err
	}
	if v.NoteFlags, err = r.U32LE(); err != nil {
		return v, err
	}
	if v.Hash, err = r.U32LE(); err != nil {
		return v, err
	}
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.StringIndex, err = r.U8(); err != nil {
		return v, err
	}
	if v.FretId, err = r.U8(); err != nil {
		return v, err
	}
	if v.AnchorFretId, err = r.U8(); err != nil {
		return v, err
	}
	if v.AnchorWidth, err = r.U8(); err != nil {
		return v, err
	}
	if v.ChordId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.ChordNotesId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseIterationId, err = r.I32LE(); err != nil {
		return v, err
	}
	for i := range v.FingerPrintId {
		if v.FingerPrintId[i], err = r.I16LE(); err != nil {
			return v, err
		}
	}
	if v.NextIterNote, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.PrevIterNote, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.ParentPrevNote, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.SlideTo, err = r.U8(); err != nil {
		return v, err
	}
	if v.SlideUnpitchTo, err = r.U8(); err != nil {
		return v, err
	}
	if v.LeftHand, err = r.U8(); err != nil {
		return v, err
	}
	if v.Tap, err = r.U8(); err != nil {
		return v, err
	}
	if v.PickDirection, err = r.U8(); err != nil {
		return v, err
	}
	if v.Slap, err = r.U8(); err != nil {
		return v, err
	}
	if v.Pluck, err = r.U8(); err != nil {
		return v, err
	}
	if v.Vibrato, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.Sustain, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.MaxBend, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.BendDataCount, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.BendDataCount < 0 || v.BendDataCount > maxArrayCount {
		return v, fmt.Errorf("%w: note bendDataCount %d out of range", ErrMalformed, v.BendDataCount)
	}
	v.BendData32 = make([]BendData32, v.BendDataCount)
	for i := range v.BendData32 {
		if v.BendData32[i], err = readBendData32(r); err != nil {
			return v, err
		}
	}
	return v, nil
}

// Anchor marks a fretting-hand position over a span of the song.
type Anchor struct {
	StartBeatTime     float32
	EndBeatTime       float32
	Unk3              float32
	Unk4              float32
	FretId            uint8
	Padding           [3]uint8
	Width             int32
	PhraseIterationId int32
}

func readAnchor(r *binreader.Reader) (Anchor, error) {
	var v Anchor
	var err error
	if v.StartBeatTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.EndBeatTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Unk3, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Unk4, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.FretId, err = r.U8(); err != nil {
		return v, err
	}
	for i := range v.Padding {
		if v.Padding[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	if v.Width, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseIterationId, err = r.I32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// AnchorExtension refines an Anchor with a secondary fret position.
type AnchorExtension struct {
	BeatTime float32
	FretId   uint8
	Unk2     int32
	Unk3     int16
	Unk4     uint8
}

func readAnchorExtension(r *binreader.Reader) (AnchorExtension, error) {
	var v AnchorExtension
	var err error
	if v.BeatTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.FretId, err = r.U8(); err != nil {
		return v, err
	}
	if v.Unk2, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Unk3, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.Unk4, err = r.U8(); err != nil {
		return v, err
	}
	return v, nil
}

// Fingerprint marks where a Chord's fingering shape is held over a span of
// the song. Arrangements carry two independent Fingerprint arrays
// (commonly one per chord-detection pass).
type Fingerprint struct {
	ChordId   int32
	StartTime float32
	EndTime   float32
	Unk3      float32
	Unk4      float32
}

func readFingerprint(r *binreader.Reader) (Fingerprint, error) {
	var v Fingerprint
	var err error
	if v.ChordId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.StartTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.EndTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Unk3, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Unk4, err = r.F32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// Arrangement is one difficulty-scoped arrangement track: its anchors,
// fingerprints, notes, and two parallel per-phrase-iteration note-density
// tables.
type Arrangement struct {
	Difficulty int32

	Anchors          []Anchor
	AnchorExtensions []AnchorExtension
	Fingerprints1    []Fingerprint
	Fingerprints2    []Fingerprint
	Notes            []Note

	PhraseCount              int32
	AverageNotesPerIteration []float32

	PhraseIterationCount1 int32
	NotesInIteration1     []int32

	PhraseIterationCount2 int32
	NotesInIteration2     []int32
}

func readArrangement(r *binreader.Reader) (Arrangement, error) {
	var v Arrangement
	var err error
	if v.Difficulty, err = r.I32LE(); err != nil {
		return v, err
	}

	if v.Anchors, err = readSlice(r, readAnchor); err != nil {
		return v, err
	}
	if v.AnchorExtensions, err = readSlice(r, readAnchorExtension); err != nil {
		return v, err
	}
	if v.Fingerprints1, err = readSlice(r, readFingerprint); err != nil {
		return v, err
	}
	if v.Fingerprints2, err = readSlice(r, readFingerprint); err != nil {
		return v, err
	}
	if v.Notes, err = readSlice(r, readNote); err != nil {
		return v, err
	}

	if v.PhraseCount, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseCount < 0 || v.PhraseCount > maxArrayCount {
		return v, fmt.Errorf("%w: arrangement phraseCount %d out of range", ErrMalformed, v.PhraseCount)
	}
	v.AverageNotesPerIteration = make([]float32, v.PhraseCount)
	for i := range v.AverageNotesPerIteration {
		if v.AverageNotesPerIteration[i], err = r.F32LE(); err != nil {
			return v, err
		}
	}

	if v.PhraseIterationCount1, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseIterationCount1 < 0 || v.PhraseIterationCount1 > maxArrayCount {
		return v, fmt.Errorf("%w: arrangement phraseIterationCount1 %d out of range", ErrMalformed, v.PhraseIterationCount1)
	}
	v.NotesInIteration1 = make([]int32, v.PhraseIterationCount1)
	for i := range v.NotesInIteration1 {
		if v.NotesInIteration1[i], err = r.I32LE(); err != nil {
			return v, err
		}
	}

	if v.PhraseIterationCount2, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseIterationCount2 < 0 || v.PhraseIterationCount2 > maxArrayCount {
		return v, fmt.Errorf("%w: arrangement phraseIterationCount2 %d out of range", ErrMalformed, v.PhraseIterationCount2)
	}
	v.NotesInIteration2 = make([]int32, v.PhraseIterationCount2)
	for i := range v.NotesInIteration2 {
		if v.NotesInIteration2[i], err = r.I32LE(); err != nil {
			return v, err
		}
	}

	return v, nil
}

// readSlice reads a u32-LE-counted array using readOne for each element —
// the shared shape behind every counted array in the schema: every array
// is preceded by a u32 LE count, even an empty one.
func readSlice[T any](r *binreader.Reader, readOne func(*binreader.Reader) (T, error)) ([]T, error) {
	count, err := readCount(r)
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	for i := range out {
		if out[i], err = readOne(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}
