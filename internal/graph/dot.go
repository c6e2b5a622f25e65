package graph

import (
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

// WriteDOT renders edges over n vertices as a Graphviz graph. label names a
// vertex; nil uses the index.
func WriteDOT(w io.Writer, name string, n int, edges []Edge, directed bool, label func(int) string) error {
	g := gographviz.NewGraph()
	if err := g.SetName(name); err != nil {
		return err
	}
	if err := g.SetDir(directed); err != nil {
		return err
	}
	for v := 0; v < n; v++ {
		attr := map[string]string{"shape": "box"}
		if label != nil {
			attr["label"] = strconv.Quote(label(v))
		}
		if err := g.AddNode(name, strconv.Itoa(v), attr); err != nil {
			return err
		}
	}
	for _, e := range edges {
		attr := map[string]string{
			"label": fmt.Sprintf("\"ov:%d d:%d\"", e.Length, e.Weight),
		}
		if err := g.AddEdge(strconv.Itoa(e.From), strconv.Itoa(e.To), directed, attr); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, g.String())
	return err
}
