package engine

// SpaceType classifies a board slot
type SpaceType string

const (
	SpaceStart       SpaceType = "start"
	SpaceProperty    SpaceType = "property"
	SpaceRailroad    SpaceType = "railroad"
	SpaceUtility     SpaceType = "utility"
	SpaceTax         SpaceType = "tax"
	SpaceChance      SpaceType = "chance"
	SpaceChest       SpaceType = "chest"
	SpaceJail        SpaceType = "jail"
	SpaceFreeParking SpaceType = "free_parking"
	SpaceGoToJail    SpaceType = "go_to_jail"
)

// Space is one slot of the static board definition.
type Space struct {
	Position   int       `json:"position"`
	Name       string    `json:"name"`
	Type       SpaceType `json:"type"`
	Price      int       `json:"price,omitempty"`
	ColorGroup string    `json:"colorGroup,omitempty"`
	// RentLevels is the ordinal rent schedule: index 0 is unimproved, 1-4
	// are house counts, the final tier is the hotel rent.
	RentLevels []int `json:"rentLevels,omitempty"`
	HouseCost  int   `json:"houseCost,omitempty"`
	TaxAmount  int   `json:"taxAmount,omitempty"`
}

// Board carries the rule tables a game runs against. The engine is
// parameterized over it so rule variants stay data-driven.
type Board struct {
	Spaces         [BoardSize]Space `json:"spaces"`
	PassStartBonus int              `json:"passStartBonus"`
	JailPosition   int              `json:"jailPosition"`
	JailFine       int              `json:"jailFine"`
	RailroadRent   int              `json:"railroadRent"` // base rent for a single railroad
}

// SpaceAt returns the space at the given position (modulo the board size).
func (b *Board) SpaceAt(position int) *Space {
	return &b.Spaces[((position%BoardSize)+BoardSize)%BoardSize]
}

// Ownable reports whether a space type can be owned by a player.
func (s *Space) Ownable() bool {
	return s.Type == SpaceProperty || s.Type == SpaceRailroad || s.Type == SpaceUtility
}

func street(pos int, name, group string, price, houseCost int, rents ...int) Space {
	return Space{Position: pos, Name: name, Type: SpaceProperty, Price: price,
		ColorGroup: group, HouseCost: houseCost, RentLevels: rents}
}

// DefaultBoard returns the standard 40-slot board: 22 streets, 4 railroads,
// 2 utilities, 2 taxes, 6 card spaces and 4 corners.
func DefaultBoard() *Board {
	b := &Board{
		PassStartBonus: 200,
		JailPosition:   10,
		JailFine:       50,
		RailroadRent:   25,
	}
	spaces := []Space{
		{Position: 0, Name: "Go", Type: SpaceStart},
		street(1, "Mediterranean Avenue", "brown", 60, 50, 2, 10, 30, 90, 160, 250),
		{Position: 2, Name: "Community Chest", Type: SpaceChest},
		street(3, "Baltic Avenue", "brown", 60, 50, 4, 20, 60, 180, 320, 450),
		{Position: 4, Name: "Income Tax", Type: SpaceTax, TaxAmount: 200},
		{Position: 5, Name: "Reading Railroad", Type: SpaceRailroad, Price: 200},
		street(6, "Oriental Avenue", "lightblue", 100, 50, 6, 30, 90, 270, 400, 550),
		{Position: 7, Name: "Chance", Type: SpaceChance},
		street(8, "Vermont Avenue", "lightblue", 100, 50, 6, 30, 90, 270, 400, 550),
		street(9, "Connecticut Avenue", "lightblue", 120, 50, 8, 40, 100, 300, 450, 600),
		{Position: 10, Name: "Jail", Type: SpaceJail},
		street(11, "St. Charles Place", "pink", 140, 100, 10, 50, 150, 450, 625, 750),
		{Position: 12, Name: "Electric Company", Type: SpaceUtility, Price: 150},
		street(13, "States Avenue", "pink", 140, 100, 10, 50, 150, 450, 625, 750),
		street(14, "Virginia Avenue", "pink", 160, 100, 12, 60, 180, 500, 700, 900),
		{Position: 15, Name: "Pennsylvania Railroad", Type: SpaceRailroad, Price: 200},
		street(16, "St. James Place", "orange", 180, 100, 14, 70, 200, 550, 750, 950),
		{Position: 17, Name: "Community Chest", Type: SpaceChest},
		street(18, "Tennessee Avenue", "orange", 180, 100, 14, 70, 200, 550, 750, 950),
		street(19, "New York Avenue", "orange", 200, 100, 16, 80, 220, 600, 800, 1000),
		{Position: 20, Name: "Free Parking", Type: SpaceFreeParking},
		street(21, "Kentucky Avenue", "red", 220, 150, 18, 90, 250, 700, 875, 1050),
		{Position: 22, Name: "Chance", Type: SpaceChance},
		street(23, "Indiana Avenue", "red", 220, 150, 18, 90, 250, 700, 875, 1050),
		street(24, "Illinois Avenue", "red", 240, 150, 20, 100, 300, 750, 925, 1100),
		{Position: 25, Name: "B&O Railroad", Type: SpaceRailroad, Price: 200},
		street(26, "Atlantic Avenue", "yellow", 260, 150, 22, 110, 330, 800, 975, 1150),
		street(27, "Ventnor Avenue", "yellow", 260, 150, 22, 110, 330, 800, 975, 1150),
		{Position: 28, Name: "Water Works", Type: SpaceUtility, Price: 150},
		street(29, "Marvin Gardens", "yellow", 280, 150, 24, 120, 360, 850, 1025, 1200),
		{Position: 30, Name: "Go To Jail", Type: SpaceGoToJail},
		street(31, "Pacific Avenue", "green", 300, 200, 26, 130, 390, 900, 1100, 1275),
		street(32, "North Carolina Avenue", "green", 300, 200, 26, 130, 390, 900, 1100, 1275),
		{Position: 33, Name: "Community Chest", Type: SpaceChest},
		street(34, "Pennsylvania Avenue", "green", 320, 200, 28, 150, 450, 1000, 1200, 1400),
		{Position: 35, Name: "Short Line", Type: SpaceRailroad, Price: 200},
		{Position: 36, Name: "Chance", Type: SpaceChance},
		street(37, "Park Place", "darkblue", 350, 200, 35, 175, 500, 1100, 1300, 1500),
		{Position: 38, Name: "Luxury Tax", Type: SpaceTax, TaxAmount: 100},
		street(39, "Boardwalk", "darkblue", 400, 200, 50, 200, 600, 1400, 1700, 2000),
	}
	for _, s := range spaces {
		b.Spaces[s.Position] = s
	}
	return b
}

// groupPositions returns the positions of every street in a color group.
func (b *Board) groupPositions(group string) []int {
	var positions []int
	for i := range b.Spaces {
		if b.Spaces[i].Type == SpaceProperty && b.Spaces[i].ColorGroup == group {
			positions = append(positions, b.Spaces[i].Position)
		}
	}
	return positions
}
