package psip

// AudioTrack describes one audio track announced by PSIP metadata. The
// channel record carries tracks opaquely; only the demuxer and the player
// interpret them.
type AudioTrack struct {
	Language     string
	AudioType    int
	ChannelCount int
	SampleRate   int
}

// CaptionTrack describes one closed-caption service announced by a caption
// service descriptor.
type CaptionTrack struct {
	Language        string
	ServiceNumber   int
	EasyReader      bool
	WideAspectRatio bool
}
