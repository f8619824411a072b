package transmitter

import (
	"bytes"
	"compress/gzip"
	"encoding/json"

	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/graphmap"
	"github.com/r3e-network/discovery-pipeline/pkg/processor"
)

// Encoding selects the batch's output shape.
type Encoding string

const (
	EncodingRaw   Encoding = "raw"
	EncodingGraph Encoding = "graph"
)

const rawFormatVersion = "1.0.0"

// EncodeBatch transforms items into the wire body for the chosen encoding,
// step 2.
func EncodeBatch(items []cloudevent.Envelope, encoding Encoding, maxClaims int) (map[string]interface{}, error) {
	switch encoding {
	case EncodingGraph:
		return encodeGraph(items, maxClaims), nil
	default:
		return encodeRaw(items), nil
	}
}

func encodeRaw(items []cloudevent.Envelope) map[string]interface{} {
	discoveries := make([]map[string]interface{}, len(items))
	for i, env := range items {
		discoveries[i] = map[string]interface{}{
			"id":      env.ID,
			"type":    env.Type,
			"subject": env.Subject,
			"time":    env.Time,
			"data":    env.Data,
		}
	}
	return map[string]interface{}{
		"format":  string(EncodingRaw),
		"version": rawFormatVersion,
		"items":   discoveries,
		"metadata": map[string]interface{}{
			"item_count": len(items),
		},
	}
}

func encodeGraph(items []cloudevent.Envelope, maxClaims int) map[string]interface{} {
	nodes := make([]graphmap.Node, 0, len(items))
	var edges []graphmap.Edge
	var claims []graphmap.Claim

	for _, env := range items {
		kind := processor.EntityFromEventType(env.Type)
		node := graphmap.BuildNode(kind, env.Data)
		nodes = append(nodes, node)
		edges = append(edges, graphmap.BuildEdges(env.Data)...)
		claims = append(claims, graphmap.BuildClaims(kind, env.Data, maxClaims)...)
	}

	return map[string]interface{}{
		"format":  string(EncodingGraph),
		"version": rawFormatVersion,
		"nodes":   nodes,
		"edges":   edges,
		"claims":  claims,
		"metadata": map[string]interface{}{
			"item_count": len(items),
		},
	}
}

// Gzip marshals the encoded batch body as JSON and gzip-compresses it. The
// body is the direct output of EncodeBatch (step 2); it is the payload
// the destination receives under Content-Encoding: gzip.
func Gzip(body map[string]interface{}) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(raw); err != nil {
		gw.Close()
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
