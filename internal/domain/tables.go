package domain

var Tables = []interface{}{
	// Catalog
	&Product{},
	// Ledger
	&Bill{},
	&BillItem{},
}
