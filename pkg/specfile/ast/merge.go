package ast

// Merge shallow-merges mapping documents in order. A later top-level key
// replaces the earlier value but keeps the position where the key first
// appeared. Null or nil documents are skipped. Inputs are never modified.
func Merge(docs ...*Node) *Node {
	out := Mapping()
	index := make(map[string]int)
	for _, doc := range docs {
		if !doc.IsMapping() {
			continue
		}
		if !out.Location.IsValid() {
			out.Location = doc.Location
		}
		for _, e := range doc.Entries {
			if i, ok := index[e.Key]; ok {
				out.Entries[i] = &Entry{Key: e.Key, Value: e.Value}
				continue
			}
			index[e.Key] = len(out.Entries)
			out.Entries = append(out.Entries, &Entry{Key: e.Key, Value: e.Value})
		}
	}
	return out
}
