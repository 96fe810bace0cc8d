package content

import (
	"github.com/txsociety/tonkit/pkg/cell"
	"strings"
)

const offChainTag = 1

// Content is the metadata pointer stored by NFT items and collections.
type Content struct {
	MetadataURL string     `json:"metadata_url"`
	Raw         *cell.Cell `json:"raw,omitempty"`
}

// Decode recovers a metadata URL from the historical content layouts:
// an optional off-chain tag byte followed by snake data, or a URL nested in the
// first reference. A cell of exactly 8 bits carries no URL.
func Decode(c *cell.Cell) Content {
	res := Content{Raw: c}
	if c == nil || c.IsEmpty() {
		return res
	}
	if c.BitLen() > 0 {
		s := c.BeginParse()
		tag, err := s.PreloadUint(8)
		if err == nil && tag == offChainTag {
			_ = s.SkipBits(8)
		}
		bits, err := s.LoadRemainingBits(true)
		if err == nil {
			res.MetadataURL = string(bits.Bytes())
		}
	}
	if first := c.Ref(0); first != nil && first.BitLen() > 0 {
		res.MetadataURL = string(first.Bits().Bytes())
	}
	res.MetadataURL = collapseURL(res.MetadataURL)
	if c.BitLen() == 8 {
		res.MetadataURL = ""
	}
	return res
}

// collapseURL drops a length prefix glued in front of the URL by some encoders.
func collapseURL(s string) string {
	if strings.Count(s, "http") > 1 {
		return s[strings.LastIndex(s, "http"):]
	}
	return s
}

// PackOffChain builds the off-chain layout: tag 1 followed by the URL as snake data.
func PackOffChain(url string) (*cell.Cell, error) {
	return cell.NewBuilder().StoreUint(offChainTag, 8).StoreStringSnake(url).EndCell()
}

// PackCollection builds collection content: the tagged collection URL and the
// common prefix for item URLs, each in its own reference.
func PackCollection(collectionURL, commonURL string) (*cell.Cell, error) {
	collection, err := PackOffChain(collectionURL)
	if err != nil {
		return nil, err
	}
	common, err := cell.NewBuilder().StoreStringSnake(commonURL).EndCell()
	if err != nil {
		return nil, err
	}
	return cell.NewBuilder().StoreRef(collection).StoreRef(common).EndCell()
}
