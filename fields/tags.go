package fields

import "sort"

// Tags is a set of strings used to mark subdomain kinds
type Tags map[string]struct{}

func (t Tags) Add(tag string) {
	t[tag] = struct{}{}
}

func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Delete removes tag, reporting whether it was present
func (t Tags) Delete(tag string) bool {
	if _, ok := t[tag]; !ok {
		return false
	}
	delete(t, tag)
	return true
}

func (t Tags) List() []string {
	l := make([]string, 0, len(t))
	for tag := range t {
		l = append(l, tag)
	}
	sort.Strings(l)
	return l
}
