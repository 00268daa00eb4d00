package domain

type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerBusiness   CustomerType = "business"
)

func (t CustomerType) IsBusiness() bool {
	return t == CustomerBusiness
}

// Visitor is a person known to the waste facility. The address, city and
// email come from the external visitor directory and may change over time.
type Visitor struct {
	ID      string
	Type    CustomerType
	Address string
	City    string
	CardID  string
	Email   string
}
