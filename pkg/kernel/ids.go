package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type TreeID string

func NewTreeID(id string) TreeID { return TreeID(id) }
func (t TreeID) String() string  { return string(t) }
func (t TreeID) IsEmpty() bool   { return string(t) == "" }

type BranchID string

func NewBranchID(id string) BranchID { return BranchID(id) }
func (b BranchID) String() string    { return string(b) }
func (b BranchID) IsEmpty() bool     { return string(b) == "" }

type LeafID string

func NewLeafID(id string) LeafID { return LeafID(id) }
func (l LeafID) String() string  { return string(l) }
func (l LeafID) IsEmpty() bool   { return string(l) == "" }
