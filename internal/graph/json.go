package graph

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// MarshalJSON renders the node-link adjacency document understood by
// networkx.adjacency_graph:
//
//	{"directed":true,"multigraph":false,"graph":[["kind","cfg"],...],
//	 "nodes":[{"id":0,"numCalls":1.0,...}],"adjacency":[[{"id":1,"weight":1}],...]}
//
// Feature values always carry a fractional part so loaders see floats.
func (g *Graph) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"directed":true,"multigraph":false,"graph":[`)
	attrs := [][2]string{{"kind", string(g.Kind)}, {"name", g.Name}}
	if g.Scheme.Valid() {
		attrs = append(attrs, [2]string{"scheme", g.Scheme.String()})
	}
	for i, kv := range attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		writeString(&buf, kv[0])
		buf.WriteByte(',')
		writeString(&buf, kv[1])
		buf.WriteByte(']')
	}

	buf.WriteString(`],"nodes":[`)
	for i := range g.Nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := g.writeNode(&buf, &g.Nodes[i]); err != nil {
			return nil, err
		}
	}

	buf.WriteString(`],"adjacency":[`)
	for i, es := range g.Adj {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, e := range es {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"id":`)
			buf.WriteString(strconv.Itoa(e.To))
			buf.WriteString(`,"weight":`)
			buf.WriteString(strconv.Itoa(e.Weight))
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

func (g *Graph) writeNode(buf *bytes.Buffer, n *Node) error {
	buf.WriteString(`{"id":`)
	buf.WriteString(strconv.Itoa(n.ID))
	if g.Kind == KindCFG {
		for i, name := range n.Features.Scheme.Fields() {
			buf.WriteByte(',')
			writeString(buf, name)
			buf.WriteByte(':')
			buf.WriteString(formatFloat(n.Features.Values[i]))
		}
	} else {
		buf.WriteString(`,"funcName":`)
		writeString(buf, n.Name)
		if n.Summary != nil {
			meta, err := json.Marshal(n.Summary)
			if err != nil {
				return err
			}
			buf.WriteString(`,"functionFeatureSubset":`)
			buf.Write(meta)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
