package poker

import (
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

const cardSliceType = "[]poker.Card"

// json-iterator treats any slice of a uint8 type as bytes and ignores
// Card.MarshalJSON, so card slices get their own codec. It is registered
// globally and applies to every jsoniter config.
func init() {
	jsoniter.RegisterTypeEncoderFunc(cardSliceType, encodeCards, cardsEmpty)
	jsoniter.RegisterTypeDecoderFunc(cardSliceType, decodeCards)
}

func cardsEmpty(ptr unsafe.Pointer) bool {
	return len(*(*[]Card)(ptr)) == 0
}

func encodeCards(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	cards := *(*[]Card)(ptr)
	if cards == nil {
		stream.WriteNil()
		return
	}
	stream.WriteArrayStart()
	for i, c := range cards {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteString(c.String())
	}
	stream.WriteArrayEnd()
}

func decodeCards(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	if iter.ReadNil() {
		*(*[]Card)(ptr) = nil
		return
	}
	cards := []Card{}
	iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
		token := iter.ReadString()
		c, err := ParseCard(token)
		if err != nil {
			iter.ReportError("decode card", err.Error())
			return false
		}
		cards = append(cards, c)
		return true
	})
	*(*[]Card)(ptr) = cards
}
