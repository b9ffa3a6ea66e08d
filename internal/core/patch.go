package core

// Patch is a partial update. Nil fields keep the stored value; the ID
// cannot be patched.
type Patch struct {
	Date     *string
	Name     *string
	Amount   *Money
	Type     *TransactionType
	Category *string
	Note     *string
}

func (p Patch) SetDate(v string) Patch {
	p.Date = &v
	return p
}

func (p Patch) SetName(v string) Patch {
	p.Name = &v
	return p
}

func (p Patch) SetAmount(v Money) Patch {
	p.Amount = &v
	return p
}

func (p Patch) SetType(v TransactionType) Patch {
	p.Type = &v
	return p
}

func (p Patch) SetCategory(v string) Patch {
	p.Category = &v
	return p
}

func (p Patch) SetNote(v string) Patch {
	p.Note = &v
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Name == nil && p.Amount == nil &&
		p.Type == nil && p.Category == nil && p.Note == nil
}

// Validate rejects values that would break stored invariants.
func (p Patch) Validate() error {
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := p.Type.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns t with the present fields of p merged in.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Note != nil {
		t.Note = *p.Note
	}
	return t
}
