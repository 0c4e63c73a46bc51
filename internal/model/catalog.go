package model

// ==================== 类目表 ====================

// Categories 主类目（与持久化服务约定一致，顺序即展示顺序）
var Categories = []string{
	"Electronics & Gadgets",
	"Collectibles & Antiques",
	"Luxury & Fashion",
	"Automobiles & Accessories",
	"Real Estate & Properties",
	"Sports & Memorabilia",
	"Art & Handmade Crafts",
	"Rare Books & Documents",
	"Industrial & Business Auctions",
	"Unique Experiences & Services",
	"Collectible Technology",
	"Musical Instruments & Equipment",
	"Luxury Lifestyle",
	"Other",
}

// Subcategories 主类目 -> 子类目
var Subcategories = map[string][]string{
	"Electronics & Gadgets": {
		"Smartphones & Accessories",
		"Laptops & Computers",
		"Cameras & Lenses",
		"Gaming Consoles & Accessories",
		"Smart Wearables",
		"Vintage Electronics",
		"Audio Equipment",
		"Drones & Robotics",
	},
	"Collectibles & Antiques": {
		"Rare Coins & Currency",
		"Stamps & Philately",
		"Vintage Memorabilia",
		"Classic Art & Paintings",
		"Historical Artifacts",
		"Vintage Toys & Games",
		"Antique Furniture",
		"Vintage Postcards & Maps",
	},
	"Luxury & Fashion": {
		"Watches & Timepieces",
		"Designer Clothing & Shoes",
		"Handbags & Accessories",
		"Jewelry & Gemstones",
		"Luxury Sunglasses",
		"Rare Fashion Collectibles",
		"Limited Edition Sneakers",
		"Vintage Designer Pieces",
	},
	"Automobiles & Accessories": {
		"Classic & Vintage Cars",
		"Luxury Cars",
		"Motorcycles & Bikes",
		"Car Accessories & Performance Parts",
		"Rare Auto Memorabilia",
		"Vintage Car Parts",
		"Racing Collectibles",
		"Automotive Art & Models",
	},
	"Real Estate & Properties": {
		"Luxury Villas & Apartments",
		"Commercial Properties",
		"Land & Plots",
		"Auctioned Foreclosed Properties",
		"Rare Historic Buildings",
		"Investment Properties",
		"Undeveloped Land",
		"Unique Architectural Properties",
	},
	"Sports & Memorabilia": {
		"Signed Jerseys & Merchandise",
		"Rare Sneakers",
		"Limited Edition Sporting Equipment",
		"Olympic & Championship Memorabilia",
		"Vintage Sports Cards",
		"Game-Used Equipment",
		"Athlete Autographs",
		"Sports Photography & Art",
	},
	"Art & Handmade Crafts": {
		"Original Paintings & Sculptures",
		"Handcrafted Decor & Furniture",
		"NFTs & Digital Art",
		"Rare Artisan Crafts",
		"Vintage Craft Tools",
		"Handmade Jewelry",
		"Unique Ceramics & Pottery",
		"Limited Edition Art Prints",
	},
	"Rare Books & Documents": {
		"First Editions & Signed Books",
		"Ancient Manuscripts & Documents",
		"Comic Books & Graphic Novels",
		"Rare Scientific Publications",
		"Vintage Maps & Atlases",
		"Autographed Literature",
		"Historical Newspapers",
		"Rare Academic Journals",
	},
	"Industrial & Business Auctions": {
		"Heavy Machinery & Equipment",
		"Wholesale & Liquidation Stocks",
		"Restaurant & Hotel Equipment",
		"Manufacturing Surplus",
		"Office Furniture & Technology",
		"Construction Equipment",
		"Agricultural Machinery",
		"Industrial Inventory Liquidation",
	},
	"Unique Experiences & Services": {
		"VIP Concert & Event Tickets",
		"Exclusive Travel Packages",
		"Meet & Greet with Celebrities",
		"Private Dining Experiences",
		"Luxury Retreat Packages",
		"Exclusive Workshop & Masterclasses",
		"Personal Training Sessions",
		"Private Guided Tours",
	},
	"Collectible Technology": {
		"Vintage Computer Systems",
		"Rare Mobile Phones",
		"Classic Video Game Consoles",
		"Limited Edition Tech Gadgets",
		"Prototype Devices",
		"Vintage Computer Components",
		"Rare Software & Operating Systems",
		"Tech Memorabilia",
	},
	"Musical Instruments & Equipment": {
		"Vintage Guitars",
		"Rare Musical Instruments",
		"Classic Amplifiers",
		"Signed Music Equipment",
		"Limited Edition Synthesizers",
		"Vintage Recording Equipment",
		"Collectible Drum Kits",
		"Rare Microphones",
	},
	"Luxury Lifestyle": {
		"Fine Wines & Spirits",
		"Rare Whiskey & Bourbon",
		"Vintage Champagne",
		"Luxury Cigars",
		"Collectible Wine Accessories",
		"Rare Bar Equipment",
		"Limited Edition Decanters",
		"Vintage Cocktail Memorabilia",
	},
	"Other": {
		"Miscellaneous",
	},
}

// SuggestedPoints 主类目 -> 建议的描述要点名称
// 用于表单提示；按主类目收敛（前端原有的按子类目细分表过于庞大）
var SuggestedPoints = map[string][]string{
	"Electronics & Gadgets":           {"Brand", "Model", "Condition", "Storage", "Screen Size", "Accessories Included"},
	"Collectibles & Antiques":         {"Era", "Condition", "Rarity", "Authentication", "Provenance", "Historical Significance"},
	"Luxury & Fashion":                {"Brand", "Model", "Condition", "Material", "Size", "Authentication"},
	"Automobiles & Accessories":       {"Make", "Model", "Year", "Mileage", "Condition", "Service History"},
	"Real Estate & Properties":        {"Location", "Size", "Type", "Condition", "Zoning", "Special Features"},
	"Sports & Memorabilia":            {"Sport", "Team/Player", "Year", "Condition", "Authentication", "Rarity"},
	"Art & Handmade Crafts":           {"Artist", "Medium", "Year", "Dimensions", "Condition", "Provenance"},
	"Rare Books & Documents":          {"Author", "Title", "Year", "Publisher", "Condition", "Rarity"},
	"Industrial & Business Auctions":  {"Type", "Brand", "Age", "Condition", "Quantity", "Specifications"},
	"Unique Experiences & Services":   {"Event", "Duration", "Location", "Group Size", "Inclusions", "Restrictions"},
	"Collectible Technology":          {"Brand", "Model", "Year", "Condition", "Functionality", "Original Packaging"},
	"Musical Instruments & Equipment": {"Brand", "Model", "Year", "Condition", "Serial Number", "Modifications"},
	"Luxury Lifestyle":                {"Type", "Producer", "Vintage", "Storage Conditions", "Rarity", "Tasting Notes"},
	"Other":                           {"Condition", "Age", "Origin", "Materials", "Dimensions", "Special Features"},
}

// ValidCategory 主类目与子类目是否构成合法组合
func ValidCategory(main, sub string) bool {
	subs, ok := Subcategories[main]
	if !ok {
		return false
	}
	for _, s := range subs {
		if s == sub {
			return true
		}
	}
	return false
}
