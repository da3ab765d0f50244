// Package wavedit provides non-destructive interval editing of mono 16-bit
// PCM WAV recordings.
//
// A Session keeps two representations of the same audio in sync: a decoded
// float buffer (*audio.Float32Buffer) and the serialized WAV bytes. Edits
// (Delete, Beep, FadeIn, FadeOut, ChangeVolume) only re-encode the span they
// touch and splice it into the previous bytes:
//
//   - EncodeFull / EncodePayload write the canonical 44-byte header and PCM16LE data
//   - SliceBytes / ConcatBytes / SliceSamples / ConcatSamples copy, never alias
//   - Session.Apply / Session.Undo manage the current state and a bounded undo ring
//
// Work that depends on a new artifact (re-decoding, redraws) is deferred to
// Session.Tick and never runs inside an edit call.
package wavedit
