package tui

import "github.com/cgrotz/cgrotz.github.io/internal/content"

type recordsLoadedMsg struct {
	records []content.Record
}

type loadErrMsg struct {
	err error
}

type refreshDoneMsg struct {
	count int
	errs  []error
}
