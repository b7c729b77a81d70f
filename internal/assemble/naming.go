package assemble

import "fmt"

// ChunkFilename returns the "<prefix>_chunk_NNN_of_MMM.<ext>" name for one
// chunk of a multi-chunk artifact.
func ChunkFilename(prefix string, index, total int, ext string) string {
	return fmt.Sprintf("%s_chunk_%03d_of_%03d.%s", prefix, index+1, total, ext)
}

// ChunkDirname returns the "<prefix>_chunk_NNN_of_MMM" directory name for
// one chunk of a multi-file-mode artifact, which has no single extension.
func ChunkDirname(prefix string, index, total int) string {
	return fmt.Sprintf("%s_chunk_%03d_of_%03d", prefix, index+1, total)
}

// IndexFilename returns the "<prefix>_INDEX.<ext>" name for the index
// file listing a multi-chunk artifact's parts.
func IndexFilename(prefix, ext string) string {
	return fmt.Sprintf("%s_INDEX.%s", prefix, ext)
}

// OutputPrefix derives the chunk/index filename prefix from a configured
// single-artifact output filename by dropping its extension.
func OutputPrefix(outputFilename string) string {
	for i := len(outputFilename) - 1; i >= 0; i-- {
		if outputFilename[i] == '.' {
			return outputFilename[:i]
		}
	}
	return outputFilename
}
