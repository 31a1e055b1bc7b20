package host

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// decodeForm turns bracket-notation form values into nested data:
//
//	title=x             -> {"title": "x"}
//	tags[]=a&tags[]=b   -> {"tags": ["a", "b"]}
//	address[street]=s   -> {"address": {"street": "s"}}
//	items[0][name]=n    -> {"items": [{"name": "n"}]}
//
// A plain key sent more than once becomes a list. Objects whose keys are all
// decimal indexes are converted to lists ordered by index.
func decodeForm(values url.Values) map[string]any {
	root := map[string]any{}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vs := values[k]
		segs := splitFormKey(k)
		if len(segs) == 0 {
			continue
		}
		for _, v := range vs {
			assignForm(root, segs, v, len(vs) > 1)
		}
	}
	for k, v := range root {
		root[k] = indexesToLists(v)
	}
	return root
}

// splitFormKey splits "a[b][]" into ["a", "b", ""].
func splitFormKey(k string) []string {
	i := strings.IndexByte(k, '[')
	if i <= 0 || !strings.HasSuffix(k, "]") {
		return []string{k}
	}
	segs := []string{k[:i]}
	rest := k[i:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return []string{k}
		}
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			return []string{k}
		}
		segs = append(segs, rest[1:j])
		rest = rest[j+1:]
	}
	return segs
}

func assignForm(node map[string]any, segs []string, v string, repeated bool) {
	head := segs[0]
	if len(segs) == 1 {
		if !repeated {
			node[head] = v
			return
		}
		list, _ := node[head].([]any)
		node[head] = append(list, v)
		return
	}
	if segs[1] == "" && len(segs) == 2 {
		list, _ := node[head].([]any)
		node[head] = append(list, v)
		return
	}
	child, ok := node[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		node[head] = child
	}
	assignForm(child, segs[1:], v, repeated)
}

func indexesToLists(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, c := range t {
			t[k] = indexesToLists(c)
		}
		if len(t) == 0 {
			return t
		}
		idx := make([]int, 0, len(t))
		for k := range t {
			n, err := strconv.Atoi(k)
			if err != nil || n < 0 || strconv.Itoa(n) != k {
				return t
			}
			idx = append(idx, n)
		}
		sort.Ints(idx)
		list := make([]any, len(idx))
		for i, n := range idx {
			list[i] = t[strconv.Itoa(n)]
		}
		return list
	case []any:
		for i, c := range t {
			t[i] = indexesToLists(c)
		}
		return t
	}
	return v
}
