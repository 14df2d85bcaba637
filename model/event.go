package model

type FileNum = uint32
type FileNumToMidiPath = map[FileNum]string

// Event is a single note or chord token and the file it came from.
type Event struct {
	Token   string
	FileNum FileNum
}

type Corpus struct {
	Events []Event
	Files  FileNumToMidiPath
}

func (c Corpus) Len() int {
	return len(c.Events)
}

func (c Corpus) Tokens() []string {
	res := make([]string, len(c.Events))
	for i, e := range c.Events {
		res[i] = e.Token
	}
	return res
}

// NewCorpus tags every token with file 0.
func NewCorpus(tokens []string) Corpus {
	events := make([]Event, len(tokens))
	for i, t := range tokens {
		events[i] = Event{Token: t}
	}
	return Corpus{Events: events, Files: FileNumToMidiPath{}}
}
