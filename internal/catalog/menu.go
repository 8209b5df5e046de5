package catalog

type dish struct {
	name        string
	description string
}

var weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var sections = map[Slot]Section{
	SlotBreakfast: {Title: "What's your favorite breakfast?", Subtitle: "Select your preferred breakfast for each day"},
	SlotLunch:     {Title: "What's your favorite lunch?", Subtitle: "Select your preferred lunch options"},
	SlotDinner:    {Title: "What's your favorite dinner?", Subtitle: "Select your preferred dinner options"},
}

var breakfastMenu = [7]dish{
	{"Poha", "With peanuts + banana or seasonal fruit (250-280g)"},
	{"Vegetable Dalia", "Soft cooked with optional ghee (300g)"},
	{"Besan Chilla", "2 medium chillas + chutney + small curd"},
	{"Masala Oats", "Thick Indian style + peanuts or sprouts (300g)"},
	{"Aloo Paratha", "1 large paratha + curd"},
	{"Vegetable Sandwich", "2 filled triangles + chutney + fruit"},
	{"Cornflakes/Masala Oats", "With milk + banana"},
}

var lunchMenus = map[PlanCategory][7]dish{
	PlanStandardVeg: {
		{"Arhar Dal Combo", "Arhar dal + aloo gobhi + rice + 2 rotis + salad"},
		{"Rajma Combo", "Rajma + cabbage peas sabzi + rice + 2 rotis"},
		{"Chole Combo", "Chole + lauki chana dal + rice + 2 rotis"},
		{"Dal Makhani Combo", "Light dal makhani + seasonal veg + rice + 2 rotis"},
		{"Kadhi Pakoda Combo", "Kadhi pakoda + jeera aloo + rice + 2 rotis"},
		{"Mix Dal Combo", "Mix dal + bhindi fry + rice + 2 rotis"},
		{"Veg Pulao", "Veg pulao + raita + papad"},
	},
	PlanStandardNonVeg: {
		{"Chicken Curry Combo", "Home-style chicken curry + rice + 2 rotis + salad"},
		{"Egg Curry Combo", "2 egg curry + jeera rice + 2 rotis"},
		{"Rajma Combo", "Rajma + cabbage peas sabzi + rice + 2 rotis"},
		{"Fish Curry Combo", "Light fish curry + rice + seasonal veg"},
		{"Keema Matar Combo", "Chicken keema matar + 2 rotis + salad"},
		{"Chole Combo", "Chole + lauki chana dal + rice + 2 rotis"},
		{"Chicken Biryani", "Chicken biryani + raita + salad"},
	},
	PlanHighProteinVeg: {
		{"Soya Chunk Curry Combo", "Soya chunk curry + brown rice + 2 rotis + salad"},
		{"Paneer Tikka Bowl", "Paneer tikka (150g) + chana salad + 2 rotis"},
		{"Chole Protein Combo", "Chole (double portion) + quinoa + curd"},
		{"Dal Tadka + Sprouts", "Dal tadka + sprouts salad + rice + 2 rotis"},
		{"Tofu Bhurji Combo", "Tofu bhurji (150g) + 2 multigrain rotis + salad"},
		{"Rajma Protein Combo", "Rajma (double portion) + brown rice + curd"},
		{"Paneer Pulao", "Paneer pulao + raita + roasted chana"},
	},
	PlanHighProteinNonVeg: {
		{"Grilled Chicken Combo", "Grilled chicken (180g) + brown rice + salad"},
		{"Egg White Bhurji Combo", "4 egg white bhurji + 2 multigrain rotis + dal"},
		{"Chicken Curry Combo", "Chicken curry (double portion) + rice + salad"},
		{"Fish Tikka Combo", "Fish tikka (180g) + quinoa + sauteed veg"},
		{"Chicken Keema Combo", "Chicken keema (180g) + 2 rotis + curd"},
		{"Egg Curry Protein Combo", "3 egg curry + brown rice + salad"},
		{"Chicken Biryani (Lean)", "Lean chicken biryani + raita + salad"},
	},
}

var dinnerMenus = map[PlanCategory][7]dish{
	PlanStandardVeg: {
		{"Dal & Sabzi", "3 rotis + seasonal veg (150g) + dal (full bowl)"},
		{"Dal Khichdi", "Rice + dal-heavy khichdi + optional ghee"},
		{"Matar Mushroom", "3 rotis + matar mushroom + dal"},
		{"Lemon Dal Combo", "Rice + lemon dal + seasonal veg"},
		{"Paneer Bhurji", "3 rotis + paneer bhurji (120-140g) + salad"},
		{"Veg Pulao", "Generous portion veg pulao + raita"},
		{"Mixed Veg Curry", "3 rotis + home-style mixed veg curry + dal"},
	},
	PlanStandardNonVeg: {
		{"Chicken & Roti", "3 rotis + chicken curry (150g) + salad"},
		{"Dal Khichdi", "Rice + dal-heavy khichdi + optional ghee"},
		{"Egg Bhurji", "3 rotis + 2 egg bhurji + dal"},
		{"Fish Curry & Rice", "Rice + light fish curry + seasonal veg"},
		{"Paneer Bhurji", "3 rotis + paneer bhurji (120-140g) + salad"},
		{"Chicken Pulao", "Chicken pulao + raita"},
		{"Mixed Veg Curry", "3 rotis + home-style mixed veg curry + dal"},
	},
	PlanHighProteinVeg: {
		{"Paneer & Dal", "3 multigrain rotis + paneer sabzi (150g) + dal"},
		{"Moong Dal Chilla", "3 moong dal chillas + paneer stuffing + chutney"},
		{"Soya Keema", "3 rotis + soya keema + salad"},
		{"Chana Masala Bowl", "Chana masala + quinoa + curd"},
		{"Tofu Stir Fry", "Tofu (150g) + sauteed veg + 2 rotis"},
		{"Sprouts Khichdi", "Moong sprouts khichdi + curd"},
		{"Paneer Tikka Masala", "3 rotis + paneer tikka masala + dal"},
	},
	PlanHighProteinNonVeg: {
		{"Tandoori Chicken", "Tandoori chicken (200g) + 2 rotis + salad"},
		{"Egg Curry & Roti", "3 egg curry + 2 multigrain rotis"},
		{"Grilled Fish", "Grilled fish (180g) + sauteed veg + dal"},
		{"Chicken Khichdi", "Chicken + dal khichdi + curd"},
		{"Chicken Tikka Bowl", "Chicken tikka (180g) + quinoa + salad"},
		{"Egg Bhurji Wrap", "4 egg bhurji in 2 multigrain wraps + salad"},
		{"Chicken Stew", "Home-style chicken stew + 2 rotis + dal"},
	},
}
