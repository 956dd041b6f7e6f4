package config

// Compression applied to rewritten workbook markup inside a package.
// ENUM(keep, store, deflate)
type MarkupCompression int

// Format of printed workbook metadata.
// ENUM(yaml, json)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtJson:
		return ".json"
	case OutputFmtYaml:
		return ".yaml"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
