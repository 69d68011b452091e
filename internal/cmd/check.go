package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/AdguardTeam/golibs/container"
	"github.com/ameshkov/nodeadmin/internal/editor"
	"github.com/ameshkov/nodeadmin/internal/node"
)

// checkDraft validates the draft file at path and writes the field errors or
// the resulting submission to w.
func checkDraft(w io.Writer, path string) (status int) {
	d, err := editor.LoadDraft(path)
	if err != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", path, err)

		return statusError
	}

	sess, err := editor.FromDraft(nil, d)
	if err != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", path, err)

		return statusError
	}
	defer sess.Abandon()

	errs := sess.Validate()
	if len(errs) > 0 {
		for _, p := range errs.Paths() {
			_, _ = fmt.Fprintf(w, "%s: %s: %s\n", path, p, errs[p])
		}

		return statusError
	}

	sub, err := node.Reduce(sess.Node(), container.NewMapSet(sess.Enabled()...))
	if err != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", path, err)

		return statusError
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err = enc.Encode(sub)
	if err != nil {
		return statusError
	}

	return statusSuccess
}
