package notes

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/tamanna-04/rock-music-generation-LSTM/chord"
	"github.com/tamanna-04/rock-music-generation-LSTM/constants"
	"github.com/tamanna-04/rock-music-generation-LSTM/file"
	"github.com/tamanna-04/rock-music-generation-LSTM/midi"
	"github.com/tamanna-04/rock-music-generation-LSTM/model"
	"github.com/tamanna-04/rock-music-generation-LSTM/util"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Percussion is the instrument number used for notes on MIDI channel 10.
const Percussion = 128

const percussionChannel = 9

var ErrNoInstruments = errors.New("no instruments found")

// Element is a group of keys struck on the same tick in the same track.
// One distinct key is a note, more is a chord.
type Element struct {
	Tick  int64
	Track int
	Keys  []uint8
}

type Part struct {
	Instrument int
	Elements   []Element
}

type Partitioner func(s *smf.SMF) ([]Part, error)

type Extractor struct {
	Partition Partitioner
}

func NewExtractor() *Extractor {
	return &Extractor{Partition: PartitionByInstrument}
}

type noteOn struct {
	tick    int64
	track   int
	channel uint8
	key     uint8
}

type programChange struct {
	tick    int64
	track   int
	channel uint8
	program uint8
}

func collect(s *smf.SMF) ([]noteOn, []programChange) {
	var notes []noteOn
	var programs []programChange
	for trackNum, track := range s.Tracks {
		var absTicks int64
		for _, evt := range track {
			absTicks += int64(evt.Delta)
			msg := gomidi.Message(evt.Message)
			var channel, key, velocity, program uint8
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				notes = append(notes, noteOn{tick: absTicks, track: trackNum, channel: channel, key: key})
			case msg.GetProgramChange(&channel, &program):
				programs = append(programs, programChange{tick: absTicks, track: trackNum, channel: channel, program: program})
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].tick != notes[j].tick {
			return notes[i].tick < notes[j].tick
		}
		return notes[i].track < notes[j].track
	})
	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].tick < programs[j].tick
	})
	return notes, programs
}

// group expects notes sorted by tick then track.
func group(notes []noteOn) []Element {
	var res []Element
	for _, n := range notes {
		last := len(res) - 1
		if last >= 0 && res[last].Tick == n.tick && res[last].Track == n.track {
			res[last].Keys = append(res[last].Keys, n.key)
			continue
		}
		res = append(res, Element{Tick: n.tick, Track: n.track, Keys: []uint8{n.key}})
	}
	return res
}

// Flatten is the instrument-agnostic view of every note in the file.
func Flatten(s *smf.SMF) []Element {
	notes, _ := collect(s)
	return group(notes)
}

// PartitionByInstrument splits notes by the program sounding on their
// channel when struck. Channels never given a program play program 0.
// Parts are ordered by the first track the instrument appears in, either
// through a note or a program change, then by its first note. Files
// without any program change carry no instrument information and return
// ErrNoInstruments.
func PartitionByInstrument(s *smf.SMF) ([]Part, error) {
	notes, programs := collect(s)
	if len(programs) == 0 || len(notes) == 0 {
		return nil, ErrNoInstruments
	}

	var current [16]int
	byInstrument := make(map[int][]noteOn)
	firstTrack := make(map[int]int)
	var order []int
	p := 0
	for _, n := range notes {
		for p < len(programs) && programs[p].tick <= n.tick {
			current[programs[p].channel] = int(programs[p].program)
			p++
		}
		instrument := current[n.channel]
		if n.channel == percussionChannel {
			instrument = Percussion
		}
		if _, ok := byInstrument[instrument]; !ok {
			order = append(order, instrument)
			firstTrack[instrument] = n.track
		} else if n.track < firstTrack[instrument] {
			firstTrack[instrument] = n.track
		}
		byInstrument[instrument] = append(byInstrument[instrument], n)
	}
	for _, pc := range programs {
		instrument := int(pc.program)
		if pc.channel == percussionChannel {
			continue
		}
		if track, ok := firstTrack[instrument]; ok && pc.track < track {
			firstTrack[instrument] = pc.track
		}
	}

	// ties keep first-note order
	sort.SliceStable(order, func(i, j int) bool {
		return firstTrack[order[i]] < firstTrack[order[j]]
	})

	parts := make([]Part, 0, len(order))
	for _, instrument := range order {
		parts = append(parts, Part{Instrument: instrument, Elements: group(byInstrument[instrument])})
	}
	return parts, nil
}

// notesToParse takes the first instrument part. Any failure while
// partitioning, panics included, falls back to the flattened view.
func (x *Extractor) notesToParse(s *smf.SMF) (elements []Element) {
	defer func() {
		if r := recover(); r != nil {
			elements = Flatten(s)
		}
	}()

	if x.Partition == nil {
		return Flatten(s)
	}
	parts, err := x.Partition(s)
	if err != nil || len(parts) == 0 {
		return Flatten(s)
	}
	return parts[0].Elements
}

func (x *Extractor) Extract(s *smf.SMF) []string {
	elements := x.notesToParse(s)
	res := make([]string, 0, len(elements))
	for _, e := range elements {
		if len(e.Keys) == 0 {
			continue
		}
		res = append(res, chord.Token(e.Keys))
	}
	return res
}

// GetNotes extracts every file in order into one corpus. A file that
// cannot be parsed aborts the whole run.
func (x *Extractor) GetNotes(paths []string) (model.Corpus, error) {
	fileNumMap := file.CreateFileNumMap(paths)
	corpus := model.Corpus{Files: fileNumMap}
	for i, path := range paths {
		fmt.Printf("Processing %v of %v midi files\n", i+1, len(paths))
		fmt.Printf("parsing %s\n", path)
		parsed, err := midi.ReadMidiFile(path)
		if err != nil {
			return model.Corpus{}, errors.Wrapf(err, "extracting notes from %s", path)
		}
		for _, token := range x.Extract(parsed) {
			corpus.Events = append(corpus.Events, model.Event{Token: token, FileNum: uint32(i)})
		}
	}
	return corpus, nil
}

func GetNotes(paths []string) (model.Corpus, error) {
	return NewExtractor().GetNotes(paths)
}

func CorpusPath(dataDir string) string {
	return filepath.Join(dataDir, constants.CorpusFilename)
}

// LoadOrCreate reads the corpus binary from dataDir when present, otherwise
// extracts every MIDI file under midiDir and writes the binary.
func LoadOrCreate(dataDir, midiDir string) (model.Corpus, error) {
	path := CorpusPath(dataDir)
	if util.Exists(path) {
		fmt.Printf("Loading notes from %v\n", path)
		return util.ReadBinary[model.Corpus](path)
	}

	paths, err := util.GatherAllMidiPaths(midiDir, 0)
	if err != nil {
		return model.Corpus{}, err
	}
	if len(paths) == 0 {
		return model.Corpus{}, errors.Errorf("no midi files found in %s", midiDir)
	}

	corpus, err := GetNotes(paths)
	if err != nil {
		return model.Corpus{}, err
	}

	if err := util.EnsureDir(dataDir); err != nil {
		return model.Corpus{}, err
	}
	if err := util.CreateBinary(path, corpus); err != nil {
		return model.Corpus{}, err
	}
	return corpus, nil
}
