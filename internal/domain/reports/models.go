package reports

// Member is one staff row inside a branch recap.
type Member struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Present  int    `json:"present"`
	Late     int    `json:"late"`
	HalfDay  int    `json:"halfDay"`
	Overtime int    `json:"overtime"`
	Permit   int    `json:"permit"`
	Absent   int    `json:"absent"`
}

// BranchRecap is one branch's attendance summary for a month.
type BranchRecap struct {
	BranchID   string   `json:"branchId"`
	BranchName string   `json:"branchName"`
	MonthCode  string   `json:"monthCode"`
	Members    []Member `json:"members"`
}
