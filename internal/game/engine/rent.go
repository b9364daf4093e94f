package engine

// RentFor computes the rent owed for landing on an owned property. It is a
// pure function of the property, the ownership graph and the dice total of
// the roll that caused the landing.
func RentFor(g *GameState, b *Board, prop *Property, diceTotal int) int {
	if prop == nil || prop.OwnerID == "" || prop.Mortgaged {
		return 0
	}

	switch prop.Type {
	case PropertyTypeStreet:
		return streetRent(g, b, prop)
	case PropertyTypeRailroad:
		n := countOwnedOfType(g, prop.OwnerID, PropertyTypeRailroad)
		if n < 1 {
			return 0
		}
		return b.RailroadRent << (n - 1)
	case PropertyTypeUtility:
		n := countOwnedOfType(g, prop.OwnerID, PropertyTypeUtility)
		if n >= 2 {
			return diceTotal * 10
		}
		return diceTotal * 4
	}
	return 0
}

func streetRent(g *GameState, b *Board, prop *Property) int {
	if len(prop.RentLevels) == 0 {
		return 0
	}
	if prop.HasHotel {
		return prop.RentLevels[len(prop.RentLevels)-1]
	}
	if prop.HouseCount > 0 {
		idx := prop.HouseCount
		if idx >= len(prop.RentLevels) {
			idx = len(prop.RentLevels) - 1
		}
		return prop.RentLevels[idx]
	}

	// Full color group with no improvements anywhere doubles the base rent.
	if ownsWholeGroupUnimproved(g, b, prop) {
		return prop.RentLevels[0] * 2
	}
	return prop.RentLevels[0]
}

func ownsWholeGroupUnimproved(g *GameState, b *Board, prop *Property) bool {
	for _, pos := range b.groupPositions(prop.ColorGroup) {
		sibling := g.PropertyAt(pos)
		if sibling == nil || sibling.OwnerID != prop.OwnerID {
			return false
		}
		if sibling.HouseCount > 0 || sibling.HasHotel {
			return false
		}
	}
	return true
}

func countOwnedOfType(g *GameState, ownerID string, t PropertyType) int {
	n := 0
	for i := range g.Properties {
		if g.Properties[i].Type == t && g.Properties[i].OwnerID == ownerID {
			n++
		}
	}
	return n
}

// CanBuildHouse reports whether a street can legally take another house:
// the owner must hold the whole color group, the street must not be
// mortgaged, and building must stay even across the group.
func CanBuildHouse(g *GameState, b *Board, prop *Property) bool {
	if prop.Type != PropertyTypeStreet || prop.Mortgaged || prop.HasHotel || prop.HouseCount >= 4 {
		return false
	}
	for _, pos := range b.groupPositions(prop.ColorGroup) {
		sibling := g.PropertyAt(pos)
		if sibling == nil || sibling.OwnerID != prop.OwnerID || sibling.Mortgaged {
			return false
		}
		if pos != prop.Position && sibling.HouseCount < prop.HouseCount {
			return false
		}
	}
	return true
}
