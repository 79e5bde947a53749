package model

// BorrowRequest is the loan data shared by every record of one borrow.
type BorrowRequest struct {
	BookPostId    string   `json:"book_post_id"`
	BookId        string   `json:"book_id"`
	BookName      string   `json:"book_name"`
	Author        string   `json:"author"`
	BorrowerUser  string   `json:"borrower_user"`
	BorrowerName  string   `json:"borrower_name"`
	LibworkerUser string   `json:"libworker_user"`
	LibworkerName string   `json:"libworker_name"`
	KeeperUsers   []string `json:"keeper_users"`
	KeeperNames   []string `json:"keeper_names"`
	Workflow      []Step   `json:"workflow"`
	StepIndex     int      `json:"step_index"`
	RenewedTimes  int      `json:"renewed_times"`
	ChosenCopyId  string   `json:"chosen_copy_id,omitempty"`
	Etag          string   `json:"etag"`
	Tags          []string `json:"tags,omitempty"`
}

// CurrentStep returns the active step, or nil when step_index is out of range.
func (br *BorrowRequest) CurrentStep() *Step {
	if br.StepIndex < 0 || br.StepIndex >= len(br.Workflow) {
		return nil
	}
	return &br.Workflow[br.StepIndex]
}

// RolesOf returns the roles user holds in this borrow.
func (br *BorrowRequest) RolesOf(user string) RoleSet {
	var roles RoleSet
	if user == "" {
		return roles
	}
	if br.BorrowerUser == user {
		roles = roles.Add(RoleBorrower)
	}
	if br.LibworkerUser == user {
		roles = roles.Add(RoleLibworker)
	}
	for _, k := range br.KeeperUsers {
		if k == user {
			roles = roles.Add(RoleKeeper)
			break
		}
	}
	return roles
}

// Participants lists every distinct user taking part in the borrow.
func (br *BorrowRequest) Participants() []string {
	seen := make(map[string]bool)
	var users []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			users = append(users, u)
		}
	}
	add(br.BorrowerUser)
	add(br.LibworkerUser)
	for _, k := range br.KeeperUsers {
		add(k)
	}
	return users
}

type RelationKeys struct {
	Book      string            `json:"book"`
	Master    string            `json:"master"`
	Borrower  string            `json:"borrower,omitempty"`
	Libworker string            `json:"libworker,omitempty"`
	Keepers   map[string]string `json:"keepers,omitempty"`
}

// RecordIds returns the ids of all participant records, without the master.
func (rk RelationKeys) RecordIds() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && id != rk.Master && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(rk.Borrower)
	add(rk.Libworker)
	for _, id := range rk.Keepers {
		add(id)
	}
	return ids
}

// Borrow is one stored view of a loan. The master record has Role
// {MASTER}; each participant gets a record carrying the roles they hold.
type Borrow struct {
	Id            string        `json:"id"`
	Owner         string        `json:"owner"`
	DataOrImage   BorrowRequest `json:"dataOrImage"`
	Role          RoleSet       `json:"role"`
	RelationsKeys RelationKeys  `json:"relations_keys"`
}

func (b *Borrow) IsMaster() bool {
	return b.Role.Has(RoleMaster)
}
