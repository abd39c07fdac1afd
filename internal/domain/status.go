package domain

// StatusState is the shop status every storefront client mirrors.
// DerivedMessage is computed by the server and never accepted from clients.
type StatusState struct {
	ShopOpen        bool   `json:"shopOpen"`
	Cooking         bool   `json:"cooking"`
	Holiday         bool   `json:"holiday"`
	HolidayText     string `json:"holidayText"`
	NoticeBoard     bool   `json:"noticeBoard"`
	NoticeBoardText string `json:"noticeBoardText"`
	DerivedMessage  string `json:"derivedMessage"`
}

// StatusUpdate is a sparse partial update. Nil fields are left untouched.
type StatusUpdate struct {
	ShopOpen        *bool   `json:"shopOpen,omitempty"`
	Cooking         *bool   `json:"cooking,omitempty"`
	Holiday         *bool   `json:"holiday,omitempty"`
	HolidayText     *string `json:"holidayText,omitempty"`
	NoticeBoard     *bool   `json:"noticeBoard,omitempty"`
	NoticeBoardText *string `json:"noticeBoardText,omitempty"`
}

// IsEmpty reports whether the update carries no recognized field.
func (u StatusUpdate) IsEmpty() bool {
	return u.ShopOpen == nil &&
		u.Cooking == nil &&
		u.Holiday == nil &&
		u.HolidayText == nil &&
		u.NoticeBoard == nil &&
		u.NoticeBoardText == nil
}

// ApplyTo overwrites the fields present in u. DerivedMessage is not touched.
func (u StatusUpdate) ApplyTo(s *StatusState) {
	if u.ShopOpen != nil {
		s.ShopOpen = *u.ShopOpen
	}
	if u.Cooking != nil {
		s.Cooking = *u.Cooking
	}
	if u.Holiday != nil {
		s.Holiday = *u.Holiday
	}
	if u.HolidayText != nil {
		s.HolidayText = *u.HolidayText
	}
	if u.NoticeBoard != nil {
		s.NoticeBoard = *u.NoticeBoard
	}
	if u.NoticeBoardText != nil {
		s.NoticeBoardText = *u.NoticeBoardText
	}
}
