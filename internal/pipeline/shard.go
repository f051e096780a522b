package pipeline

import "github.com/vvsotnikov/playwright/internal/config"

// shardFiles keeps the contiguous range of the flat file sequence that
// belongs to shard. Projects left without files are dropped.
func shardFiles(projects []projectFiles, shard *config.Shard) []projectFiles {
	total := 0
	for _, pf := range projects {
		total += len(pf.files)
	}

	index := shard.Current - 1
	size := total / shard.Total
	extra := total % shard.Total
	from := size*index + min(extra, index)
	to := from + size
	if index < extra {
		to++
	}

	var out []projectFiles
	cursor := 0
	for _, pf := range projects {
		var files []string
		for _, f := range pf.files {
			if cursor >= from && cursor < to {
				files = append(files, f)
			}
			cursor++
		}
		if len(files) > 0 {
			out = append(out, projectFiles{project: pf.project, files: files})
		}
	}
	return out
}
