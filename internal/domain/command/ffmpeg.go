package command

// FFmpeg flags used by the metadata embed step.
const (
	FFmpeg           = "ffmpeg"
	FFVersion        = "-version"
	Overwrite        = "-y"
	Input            = "-i"
	StreamMap        = "-map"
	Codec            = "-c"
	CodecCopy        = "copy"
	Metadata         = "-metadata"
	DispositionCover = "-disposition:v:1"
	AttachedPic      = "attached_pic"
)

// Post-processor arguments handed to the extraction tool for its merge step.
const MergePostprocessorArgs = "-c:v copy -c:a aac -b:a 192k"
