// Package sng parses the Rocksmith SNG asset: an AES-256-CTR-encrypted,
// optionally Zlib-compressed, densely packed binary stream of roughly
// twenty record types describing a song's notes, chords, phrases, events,
// and metadata.
//
// Every record type is read field by field off a shared internal/binreader
// cursor rather than through reflection-based decoding, keeping each
// record's on-disk layout explicit and easy to audit against its struct.
package sng

import (
	"fmt"

	"github.com/rocksmith-tools/rsarc/internal/binreader"
)

// maxArrayCount bounds a counted array's declared length. Any count above
// this is almost certainly a corrupt or adversarial length prefix rather
// than a real arrangement.
const maxArrayCount = 1 << 20

func readCount(r *binreader.Reader) (int, error) {
	n, err := r.U32LE()
	if err != nil {
		return 0, err
	}
	if n > maxArrayCount {
		return 0, fmt.Errorf("%w: array count %d exceeds ceiling %d", ErrMalformed, n, maxArrayCount)
	}
	return int(n), nil
}

// Bpm is a single BPM marker.
type Bpm struct {
	Time            float32
	Measure         int16
	Beat            int16
	PhraseIteration int32
	Mask            int32
}

func readBpm(r *binreader.Reader) (Bpm, error) {
	var v Bpm
	var err error
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Measure, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.Beat, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.PhraseIteration, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Mask, err = r.I32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// Phrase describes a named section of an arrangement (solo section, riff,
// etc.) that PhraseIterations later reference by index.
type Phrase struct {
	Solo                 uint8
	Disparity            uint8
	Ignore               uint8
	Padding              uint8
	MaxDifficulty        int32
	PhraseIterationLinks int32
	Name                 string // char[32]
}

func readPhrase(r *binreader.Reader) (Phrase, error) {
	var v Phrase
	var err error
	if v.Solo, err = r.U8(); err != nil {
		return v, err
	}
	if v.Disparity, err = r.U8(); err != nil {
		return v, err
	}
	if v.Ignore, err = r.U8(); err != nil {
		return v, err
	}
	if v.Padding, err = r.U8(); err != nil {
		return v, err
	}
	if v.MaxDifficulty, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseIterationLinks, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Name, err = r.FixedString(32); err != nil {
		return v, err
	}
	return v, nil
}

// Chord describes a fixed fret/finger shape playable as a single unit.
type Chord struct {
	Mask   uint32
	Frets  [6]uint8
	Finger [6]uint8
	Notes  [6]int32
	Name   string // char[32]
}

func readChord(r *binreader.Reader) (Chord, error) {
	var v Chord
	var err error
	if v.Mask, err = r.U32LE(); err != nil {
		return v, err
	}
	for i := range v.Frets {
		if v.Frets[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	for i := range v.Finger {
		if v.Finger[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	for i := range v.Notes {
		if v.Notes[i], err = r.I32LE(); err != nil {
			return v, err
		}
	}
	if v.Name, err = r.FixedString(32); err != nil {
		return v, err
	}
	return v, nil
}

// BendData32 is one sample of a pitch-bend curve.
type BendData32 struct {
	Time  float32
	Step  float32
	Unk3  int16
	Unk4  uint8
	Unk5  uint8
}

func readBendData32(r *binreader.Reader) (BendData32, error) {
	var v BendData32
	var err error
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Step, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Unk3, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.Unk4, err = r.U8(); err != nil {
		return v, err
	}
	if v.Unk5, err = r.U8(); err != nil {
		return v, err
	}
	return v, nil
}

// BendData is a fixed 32-slot pitch-bend curve plus the count of slots
// actually used.
type BendData struct {
	Bends     [32]BendData32
	UsedCount int32
}

func readBendData(r *binreader.Reader) (BendData, error) {
	var v BendData
	for i := range v.Bends {
		bd, err := readBendData32(r)
		if err != nil {
			return v, err
		}
		v.Bends[i] = bd
	}
	var err error
	if v.UsedCount, err = r.I32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// ChordNotes carries the per-string note mask, bend curves, and
// articulation flags for a Chord's constituent notes.
type ChordNotes struct {
	NoteMask       [6]int32
	BendData       [6]BendData
	SlideTo        [6]uint8
	SlideUnpitchTo [6]uint8
	Vibrato        [6]int16
}

func readChordNotes(r *binreader.Reader) (ChordNotes, error) {
	var v ChordNotes
	var err error
	for i := range v.NoteMask {
		if v.NoteMask[i], err = r.I32LE(); err != nil {
			return v, err
		}
	}
	for i := range v.BendData {
		if v.BendData[i], err = readBendData(r); err != nil {
			return v, err
		}
	}
	for i := range v.SlideTo {
		if v.SlideTo[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	for i := range v.SlideUnpitchTo {
		if v.SlideUnpitchTo[i], err = r.U8(); err != nil {
			return v, err
		}
	}
	for i := range v.Vibrato {
		if v.Vibrato[i], err = r.I16LE(); err != nil {
			return v, err
		}
	}
	return v, nil
}

// Vocal is a single lyric event.
type Vocal struct {
	Time   float32
	Note   int32
	Length float32
	Lyric  string // char[48]
}

func readVocal(r *binreader.Reader) (Vocal, error) {
	var v Vocal
	var err error
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Note, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Length, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.Lyric, err = r.FixedString(48); err != nil {
		return v, err
	}
	return v, nil
}

// SymbolsHeader is present only when Vocals is non-empty: it describes the
// lyric-glyph texture sheet layout.
type SymbolsHeader struct {
	Unk [8]int32
}

func readSymbolsHeader(r *binreader.Reader) (SymbolsHeader, error) {
	var v SymbolsHeader
	var err error
	for i := range v.Unk {
		if v.Unk[i], err = r.I32LE(); err != nil {
			return v, err
		}
	}
	return v, nil
}

// SymbolsTexture describes one lyric-glyph texture sheet.
type SymbolsTexture struct {
	Font           string // char[128]
	FontpathLength int32
	Unk1           int32
	Width          int32
	Height         int32
}

func readSymbolsTexture(r *binreader.Reader) (SymbolsTexture, error) {
	var v SymbolsTexture
	var err error
	if v.Font, err = r.FixedString(128); err != nil {
		return v, err
	}
	if v.FontpathLength, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Unk1, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Width, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Height, err = r.I32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// Rect is an axis-aligned UV rectangle into a SymbolsTexture sheet. Field
// order is yMin, xMin, yMax, xMax, matching the on-disk layout exactly
// (not the more common xMin/yMin/xMax/yMax order).
type Rect struct {
	YMin, XMin, YMax, XMax float32
}

func readRect(r *binreader.Reader) (Rect, error) {
	var v Rect
	var err error
	if v.YMin, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.XMin, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.YMax, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.XMax, err = r.F32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// SymbolDefinition maps a lyric glyph to its position in a SymbolsTexture
// sheet.
type SymbolDefinition struct {
	Text  string // char[12]
	Outer Rect
	Inner Rect
}

func readSymbolDefinition(r *binreader.Reader) (SymbolDefinition, error) {
	var v SymbolDefinition
	var err error
	if v.Text, err = r.FixedString(12); err != nil {
		return v, err
	}
	if v.Outer, err = readRect(r); err != nil {
		return v, err
	}
	if v.Inner, err = readRect(r); err != nil {
		return v, err
	}
	return v, nil
}

// PhraseIteration is one concrete occurrence of a Phrase at a point in the
// song, with a per-difficulty-level index into the arrangement's
// difficulty-specific Notes.
type PhraseIteration struct {
	PhraseId       int32
	StartTime      float32
	NextPhraseTime float32
	Difficulty     [3]int32
}

func readPhraseIteration(r *binreader.Reader) (PhraseIteration, error) {
	var v PhraseIteration
	var err error
	if v.PhraseId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.StartTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.NextPhraseTime, err = r.F32LE(); err != nil {
		return v, err
	}
	for i := range v.Difficulty {
		if v.Difficulty[i], err = r.I32LE(); err != nil {
			return v, err
		}
	}
	return v, nil
}

// PhraseExtraInfoByLevel carries the "level jump" permission flag for one
// phrase at one difficulty level. The layout is packed with no implicit
// padding — the trailing Padding byte is part of the on-disk record, not
// compiler-inserted alignment.
type PhraseExtraInfoByLevel struct {
	PhraseId   int32
	Difficulty int32
	Empty      int32
	LevelJump  uint8
	Redundant  int16
	Padding    uint8
}

func readPhraseExtraInfoByLevel(r *binreader.Reader) (PhraseExtraInfoByLevel, error) {
	var v PhraseExtraInfoByLevel
	var err error
	if v.PhraseId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Difficulty, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.Empty, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.LevelJump, err = r.U8(); err != nil {
		return v, err
	}
	if v.Redundant, err = r.I16LE(); err != nil {
		return v, err
	}
	if v.Padding, err = r.U8(); err != nil {
		return v, err
	}
	return v, nil
}

// NLinkedDifficulty groups phrases that share a difficulty progression.
// NldPhrase's length is NOT a separate counted array: it is given by the
// PhraseCount field immediately preceding it.
type NLinkedDifficulty struct {
	LevelBreak  int32
	PhraseCount int32
	NldPhrase   []int32
}

func readNLinkedDifficulty(r *binreader.Reader) (NLinkedDifficulty, error) {
	var v NLinkedDifficulty
	var err error
	if v.LevelBreak, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseCount, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.PhraseCount < 0 || v.PhraseCount > maxArrayCount {
		return v, fmt.Errorf("%w: nLinkedDifficulty phraseCount %d out of range", ErrMalformed, v.PhraseCount)
	}
	v.NldPhrase = make([]int32, v.PhraseCount)
	for i := range v.NldPhrase {
		if v.NldPhrase[i], err = r.I32LE(); err != nil {
			return v, err
		}
	}
	return v, nil
}

// Action is a named gameplay trigger at a point in time (e.g. a scripted
// hero-worship camera cue).
type Action struct {
	Time       float32
	ActionName string // char[256]
}

func readAction(r *binreader.Reader) (Action, error) {
	var v Action
	var err error
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.ActionName, err = r.FixedString(256); err != nil {
		return v, err
	}
	return v, nil
}

// Event is a named timeline marker (e.g. "section crowd").
type Event struct {
	Time      float32
	EventName string // char[256]
}

func readEvent(r *binreader.Reader) (Event, error) {
	var v Event
	var err error
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.EventName, err = r.FixedString(256); err != nil {
		return v, err
	}
	return v, nil
}

// Tone marks a guitar-tone switch at a point in time.
type Tone struct {
	Time   float32
	ToneId int32
}

func readTone(r *binreader.Reader) (Tone, error) {
	var v Tone
	var err error
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.ToneId, err = r.I32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// Dna marks a "Dynamic Neck Animation" cue at a point in time.
type Dna struct {
	Time  float32
	DnaId int32
}

func readDna(r *binreader.Reader) (Dna, error) {
	var v Dna
	var err error
	if v.Time, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.DnaId, err = r.I32LE(); err != nil {
		return v, err
	}
	return v, nil
}

// Section is a named song section (verse, chorus, solo, ...).
type Section struct {
	Name                    string // char[32]
	Number                  int32
	StartTime               float32
	EndTime                 float32
	StartPhraseIterationId  int32
	EndPhraseIterationId    int32
	StringMask              string // char[36]
}

func readSection(r *binreader.Reader) (Section, error) {
	var v Section
	var err error
	if v.Name, err = r.FixedString(32); err != nil {
		return v, err
	}
	if v.Number, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.StartTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.EndTime, err = r.F32LE(); err != nil {
		return v, err
	}
	if v.StartPhraseIterationId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.EndPhraseIterationId, err = r.I32LE(); err != nil {
		return v, err
	}
	if v.StringMask, err = r.FixedString(36); err != nil {
		return v, err
	}
	return v, nil
}
