package engine

import "fmt"

// DeckType identifies which deck a card belongs to
type DeckType string

const (
	DeckChance DeckType = "chance"
	DeckChest  DeckType = "chest"
)

// CardActionKind is the closed set of card effects.
type CardActionKind string

const (
	CardMove            CardActionKind = "move"
	CardMoveRelative    CardActionKind = "move_relative"
	CardMoveToNearest   CardActionKind = "move_to_nearest"
	CardCollect         CardActionKind = "collect"
	CardPay             CardActionKind = "pay"
	CardCollectFromEach CardActionKind = "collect_from_each"
	CardPayEach         CardActionKind = "pay_each"
	CardRepair          CardActionKind = "repair"
	CardJail            CardActionKind = "jail"
	CardJailFree        CardActionKind = "jail_free"
)

// CardAction is a tagged variant: Kind selects which of the remaining fields
// are meaningful.
type CardAction struct {
	Kind        CardActionKind `bson:"kind" json:"kind"`
	Destination int            `bson:"destination,omitempty" json:"destination,omitempty"` // move
	Offset      int            `bson:"offset,omitempty" json:"offset,omitempty"`           // move_relative
	Nearest     SpaceType      `bson:"nearest,omitempty" json:"nearest,omitempty"`         // move_to_nearest
	Amount      int            `bson:"amount,omitempty" json:"amount,omitempty"`           // collect/pay variants
	HouseFee    int            `bson:"houseFee,omitempty" json:"houseFee,omitempty"`       // repair
	HotelFee    int            `bson:"hotelFee,omitempty" json:"hotelFee,omitempty"`       // repair
}

// Card is one entry of a deck.
type Card struct {
	ID     string     `bson:"cardId" json:"cardId"`
	Deck   DeckType   `bson:"deck" json:"deck"`
	Text   string     `bson:"text" json:"text"`
	Action CardAction `bson:"action" json:"action"`
}

// Deck is a card table. Draws are uniform with replacement: a drawn card is
// never removed from future draws.
type Deck []Card

// Decks bundles the two decks a board plays with.
type Decks struct {
	Chance Deck
	Chest  Deck
}

func chanceCard(n int, text string, action CardAction) Card {
	return Card{ID: fmt.Sprintf("chance-%02d", n), Deck: DeckChance, Text: text, Action: action}
}

func chestCard(n int, text string, action CardAction) Card {
	return Card{ID: fmt.Sprintf("chest-%02d", n), Deck: DeckChest, Text: text, Action: action}
}

// DefaultDecks returns the standard 14-entry chance and community chest decks.
func DefaultDecks() Decks {
	return Decks{
		Chance: Deck{
			chanceCard(1, "Advance to Go", CardAction{Kind: CardMove, Destination: 0}),
			chanceCard(2, "Advance to Illinois Avenue", CardAction{Kind: CardMove, Destination: 24}),
			chanceCard(3, "Advance to St. Charles Place", CardAction{Kind: CardMove, Destination: 11}),
			chanceCard(4, "Advance to the nearest utility", CardAction{Kind: CardMoveToNearest, Nearest: SpaceUtility}),
			chanceCard(5, "Advance to the nearest railroad", CardAction{Kind: CardMoveToNearest, Nearest: SpaceRailroad}),
			chanceCard(6, "Bank pays you a dividend of $50", CardAction{Kind: CardCollect, Amount: 50}),
			chanceCard(7, "Get out of jail free", CardAction{Kind: CardJailFree}),
			chanceCard(8, "Go back three spaces", CardAction{Kind: CardMoveRelative, Offset: -3}),
			chanceCard(9, "Go directly to jail", CardAction{Kind: CardJail}),
			chanceCard(10, "Make general repairs on all your property: $25 per house, $100 per hotel",
				CardAction{Kind: CardRepair, HouseFee: 25, HotelFee: 100}),
			chanceCard(11, "Pay poor tax of $15", CardAction{Kind: CardPay, Amount: 15}),
			chanceCard(12, "Take a trip to Reading Railroad", CardAction{Kind: CardMove, Destination: 5}),
			chanceCard(13, "Take a walk on the Boardwalk", CardAction{Kind: CardMove, Destination: 39}),
			chanceCard(14, "You have been elected chairman of the board: pay each player $50",
				CardAction{Kind: CardPayEach, Amount: 50}),
		},
		Chest: Deck{
			chestCard(1, "Advance to Go", CardAction{Kind: CardMove, Destination: 0}),
			chestCard(2, "Bank error in your favor: collect $200", CardAction{Kind: CardCollect, Amount: 200}),
			chestCard(3, "Doctor's fees: pay $50", CardAction{Kind: CardPay, Amount: 50}),
			chestCard(4, "From sale of stock you get $50", CardAction{Kind: CardCollect, Amount: 50}),
			chestCard(5, "Get out of jail free", CardAction{Kind: CardJailFree}),
			chestCard(6, "Go directly to jail", CardAction{Kind: CardJail}),
			chestCard(7, "Grand opera night: collect $50 from every player", CardAction{Kind: CardCollectFromEach, Amount: 50}),
			chestCard(8, "Holiday fund matures: collect $100", CardAction{Kind: CardCollect, Amount: 100}),
			chestCard(9, "Income tax refund: collect $20", CardAction{Kind: CardCollect, Amount: 20}),
			chestCard(10, "Life insurance matures: collect $100", CardAction{Kind: CardCollect, Amount: 100}),
			chestCard(11, "Pay hospital fees of $100", CardAction{Kind: CardPay, Amount: 100}),
			chestCard(12, "Pay school fees of $50", CardAction{Kind: CardPay, Amount: 50}),
			chestCard(13, "Receive $25 consultancy fee", CardAction{Kind: CardCollect, Amount: 25}),
			chestCard(14, "You are assessed for street repairs: $40 per house, $115 per hotel",
				CardAction{Kind: CardRepair, HouseFee: 40, HotelFee: 115}),
		},
	}
}
