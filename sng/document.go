package sng

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rocksmith-tools/rsarc/internal/binreader"
)

// Document is a fully parsed SNG asset: every record array in the exact
// on-disk order, plus the trailing Metadata record.
//
// SymbolsHeaders, SymbolsTextures, and SymbolDefinitions are nil — not
// empty slices — whenever Vocals is empty, because those three arrays are
// entirely absent from the stream in that case (not present with a count
// of zero). A non-nil-but-empty slice would misrepresent that distinction,
// so callers should treat "absent" (nil) and "present but empty" as
// different states for these three fields specifically.
type Document struct {
	Bpms       []Bpm
	Phrases    []Phrase
	Chords     []Chord
	ChordNotes []ChordNotes
	Vocals     []Vocal

	SymbolsHeaders    []SymbolsHeader
	SymbolsTextures   []SymbolsTexture
	SymbolDefinitions []SymbolDefinition

	PhraseIterations       []PhraseIteration
	PhraseExtraInfoByLevel []PhraseExtraInfoByLevel
	NLinkedDifficulties    []NLinkedDifficulty
	Actions                []Action
	Events                 []Event
	Tones                  []Tone
	Dnas                   []Dna
	Sections               []Section
	Arrangements           []Arrangement

	Metadata Metadata
}

// Parse decrypts raw (the inflated bytes of a PSARC entry whose name ends
// in ".sng") via the SNG decryptor and reads the resulting plaintext body
// as the fixed, ordered sequence of record arrays that make up the asset.
func Parse(raw []byte) (*Document, error) {
	body, err := decryptBody(raw)
	if err != nil {
		return nil, err
	}

	r := binreader.New(bytes.NewReader(body))
	doc := &Document{}

	if doc.Bpms, err = readSlice(r, readBpm); err != nil {
		return nil, wrap(err)
	}
	if doc.Phrases, err = readSlice(r, readPhrase); err != nil {
		return nil, wrap(err)
	}
	if doc.Chords, err = readSlice(r, readChord); err != nil {
		return nil, wrap(err)
	}
	if doc.ChordNotes, err = readSlice(r, readChordNotes); err != nil {
		return nil, wrap(err)
	}
	if doc.Vocals, err = readSlice(r, readVocal); err != nil {
		return nil, wrap(err)
	}

	// The three symbol arrays exist on the wire only when Vocals is
	// non-empty; when Vocals is empty they are skipped entirely, not read
	// as empty-count arrays.
	if len(doc.Vocals) > 0 {
		if doc.SymbolsHeaders, err = readSlice(r, readSymbolsHeader); err != nil {
			return nil, wrap(err)
		}
		if doc.SymbolsTextures, err = readSlice(r, readSymbolsTexture); err != nil {
			return nil, wrap(err)
		}
		if doc.SymbolDefinitions, err = readSlice(r, readSymbolDefinition); err != nil {
			return nil, wrap(err)
		}
	}

	if doc.PhraseIterations, err = readSlice(r, readPhraseIteration); err != nil {
		return nil, wrap(err)
	}
	if doc.PhraseExtraInfoByLevel, err = readSlice(r, readPhraseExtraInfoByLevel); err != nil {
		return nil, wrap(err)
	}
	if doc.NLinkedDifficulties, err = readSlice(r, readNLinkedDifficulty); err != nil {
		return nil, wrap(err)
	}
	if doc.Actions, err = readSlice(r, readAction); err != nil {
		return nil, wrap(err)
	}
	if doc.Events, err = readSlice(r, readEvent); err != nil {
		return nil, wrap(err)
	}
	if doc.Tones, err = readSlice(r, readTone); err != nil {
		return nil, wrap(err)
	}
	if doc.Dnas, err = readSlice(r, readDna); err != nil {
		return nil, wrap(err)
	}
	if doc.Sections, err = readSlice(r, readSection); err != nil {
		return nil, wrap(err)
	}
	if doc.Arrangements, err = readSlice(r, readArrangement); err != nil {
		return nil, wrap(err)
	}

	if doc.Metadata, err = readMetadata(r); err != nil {
		return nil, wrap(err)
	}

	return doc, nil
}

// wrap translates a failure from internal/binreader (or this package's own
// count-ceiling checks) into this package's error taxonomy, preserving the
// chain so errors.Is(err, sng.ErrTruncated)/(sng.ErrMalformed) still
// resolve correctly regardless of which layer raised it.
func wrap(err error) error {
	switch {
	case errors.Is(err, ErrMalformed), errors.Is(err, ErrNotSng), errors.Is(err, ErrTruncated):
		return err
	case errors.Is(err, binreader.ErrTruncated):
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	case errors.Is(err, binreader.ErrMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return err
	}
}
