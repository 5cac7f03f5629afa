package badgerstore

import (
	"encoding/binary"
	"fmt"

	"github.com/roach88/doublets/internal/link"
)

var (
	keyNext  = []byte("m/next")
	keyCount = []byte("m/count")

	prefixLink = []byte("l/")
	prefixPair = []byte("p/")
	prefixName = []byte("n/")
	prefixRev  = []byte("r/")
)

func encodeUint(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func encodeRef(r link.Ref) []byte {
	return encodeUint(uint64(r))
}

func decodeUint(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("bad integer encoding: %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func linkKey(r link.Ref) []byte {
	return binary.BigEndian.AppendUint64(append([]byte{}, prefixLink...), uint64(r))
}

func pairKey(source, target link.Ref) []byte {
	k := append([]byte{}, prefixPair...)
	k = binary.BigEndian.AppendUint64(k, uint64(source))
	return binary.BigEndian.AppendUint64(k, uint64(target))
}

func nameKey(name string) []byte {
	return append(append([]byte{}, prefixName...), name...)
}

func revKey(r link.Ref) []byte {
	return binary.BigEndian.AppendUint64(append([]byte{}, prefixRev...), uint64(r))
}

func encodeEnds(source, target link.Ref) []byte {
	v := binary.BigEndian.AppendUint64(nil, uint64(source))
	return binary.BigEndian.AppendUint64(v, uint64(target))
}

// decodeLink rebuilds a link from an l/ key and its value.
func decodeLink(key, val []byte) (link.Link, error) {
	if len(key) != len(prefixLink)+8 || len(val) != 16 {
		return link.Link{}, fmt.Errorf("bad link entry %q", key)
	}
	return link.Link{
		Index:  link.Ref(binary.BigEndian.Uint64(key[len(prefixLink):])),
		Source: link.Ref(binary.BigEndian.Uint64(val[:8])),
		Target: link.Ref(binary.BigEndian.Uint64(val[8:])),
	}, nil
}
