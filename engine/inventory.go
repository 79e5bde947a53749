package engine

import (
	"fmt"

	"github.com/mohitkumar/bookflow/model"
)

type move struct {
	from model.CopyStatus
	to   model.CopyStatus
}

// moves maps a status to the inventory change of entering it.
var moves = map[model.Status]move{
	model.StatusConfirmed:       {model.CopyInStock, model.CopyTransmitOut},
	model.StatusDelivered:       {model.CopyTransmitOut, model.CopyLending},
	model.StatusReturnConfirmed: {model.CopyLending, model.CopyTransmitIn},
	model.StatusReturned:        {model.CopyTransmitIn, model.CopyInStock},
}

func counter(inv *model.BookInventory, s model.CopyStatus) *int {
	switch s {
	case model.CopyInStock:
		return &inv.Stock
	case model.CopyTransmitOut:
		return &inv.TransmitOut
	case model.CopyLending:
		return &inv.Lending
	case model.CopyTransmitIn:
		return &inv.TransmitIn
	}
	return nil
}

// applyInventory moves one copy of book for a borrow entering status, or
// leaving it when reverse is set. chosenCopy is only read when a loan is
// confirmed.
func applyInventory(book *model.Book, br *model.BorrowRequest, status model.Status, reverse bool, chosenCopy string) error {
	m, ok := moves[status]
	if !ok {
		return nil
	}
	if reverse {
		m.from, m.to = m.to, m.from
	}
	inv := &book.BookInventory
	src, dst := counter(inv, m.from), counter(inv, m.to)
	if *src <= 0 {
		if m.from == model.CopyInStock {
			return model.ErrNoStock
		}
		return fmt.Errorf("%w: no %s copy of %s", model.ErrInvalidTransition, m.from, book.PostId)
	}

	if len(inv.Copies) > 0 {
		copyId := br.ChosenCopyId
		if status == model.StatusConfirmed && !reverse {
			copyId = chosenCopy
			if st, ok := inv.Copies[copyId]; !ok || st != model.CopyInStock {
				return model.ErrChooseInStockCopy
			}
		}
		if st, ok := inv.Copies[copyId]; ok && st == m.from {
			inv.Copies[copyId] = m.to
		}
		switch {
		case status == model.StatusConfirmed && reverse:
			br.ChosenCopyId = ""
		case status == model.StatusConfirmed:
			br.ChosenCopyId = copyId
		}
	}

	*src--
	*dst++
	book.RefreshAllowed()
	return nil
}
