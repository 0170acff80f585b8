package suggest

// answers holds the advisory markdown shown with each suggestion, keyed by
// suggestion ID. The text is general guidance, not medical advice.
var answers = map[string]string{
	"calories.little": `Eating well under your target for several days can leave you tired and hungry later on.

- Add a small snack between meals, such as yogurt, nuts or a piece of fruit.
- Make sure every meal has a source of protein and some fat.
- If you are skipping logs on busy days, totals will look lower than they were.`,

	"calories.much": `Going over your calorie target now and then is normal. When it happens often, look at the easiest wins first.

- Check drinks: juice, soda and alcohol add up quickly.
- Serve smaller portions and wait a few minutes before a second helping.
- Keep high-calorie snacks out of easy reach.`,

	"carbs.little": `Carbohydrates are the body's quickest source of energy.

- Add whole grains like oats, brown rice or wholemeal bread.
- Fruit and starchy vegetables such as potatoes count too.
- If you follow a low-carb style on purpose, update your diet style so the goal matches.`,

	"carbs.much": `Frequent high-carb days usually come from refined foods.

- Swap white bread and pasta for wholegrain versions.
- Fill half the plate with non-starchy vegetables.
- Watch sweetened drinks and desserts.`,

	"protein.little": `Protein helps keep you full and supports muscle.

- Include eggs, dairy, fish, meat, tofu or legumes at each meal.
- Greek yogurt and cottage cheese make easy high-protein snacks.
- A handful of nuts or seeds adds a little more.`,

	"protein.much": `Regularly eating far more protein than your goal rarely adds benefit.

- Balance plates with more vegetables and whole grains.
- Cut back on protein shakes or bars if you use them.
- Drink enough water.`,

	"fat.little": `Some fat is essential for absorbing vitamins A, D, E and K.

- Cook with olive or rapeseed oil.
- Add avocado, nuts or seeds to meals.
- Oily fish twice a week covers healthy fats too.`,

	"fat.much": `High-fat days often come from fried food, pastries and processed meat.

- Grill, bake or steam instead of frying.
- Choose lean cuts and lower-fat dairy.
- Measure cooking oil rather than pouring it.`,

	"fiber.little": `Fiber supports digestion and keeps you full for longer.

- Choose wholegrain bread, cereals and pasta.
- Eat beans, lentils or chickpeas a few times a week.
- Keep the skin on fruit and vegetables where you can.
- Increase slowly and drink plenty of water.`,

	"fiber.much": `Very high fiber intake can cause bloating or discomfort.

- Spread fiber-rich foods across the day.
- Drink plenty of water.
- Cut back gradually if you notice symptoms.`,

	"sugar.little": `Staying under your sugar goal is not a problem in itself. If you feel low on energy, add whole fruit rather than sweets.`,

	"sugar.much": `Added sugar is easy to overeat because it hides in drinks and processed food.

- Replace sugary drinks with water or unsweetened tea.
- Check labels on yogurts, sauces and cereals.
- Keep sweets for occasional treats.`,

	"saturatedFat.little": `Low saturated fat is generally fine. Make sure total fat still comes from good sources such as oils, nuts and fish.`,

	"saturatedFat.much": `Saturated fat mostly comes from fatty meat, butter, cheese, cream and baked goods.

- Choose lean meat and remove visible fat.
- Use vegetable oils instead of butter.
- Limit pastries, biscuits and cakes.`,

	"monounsaturatedFat.little": `Monounsaturated fats are found in olive oil, avocados and nuts.

- Use olive oil for cooking and dressings.
- Snack on almonds, hazelnuts or cashews.
- Add avocado to salads or toast.`,

	"monounsaturatedFat.much": `Monounsaturated fats are healthy, but they are still calorie-dense. Keep an eye on portions of oil and nuts if your calories are high as well.`,

	"cholesterol.little": `Low dietary cholesterol is not a concern. No change is needed.`,

	"cholesterol.much": `Dietary cholesterol comes from animal foods such as egg yolks, organ meats and shellfish.

- Balance these with plant-based meals.
- Choose lean meat and lower-fat dairy.
- Ask a professional if you have been told to watch your blood cholesterol.`,

	"sodium.little": `Very low sodium is unusual. If you sweat a lot or feel light-headed, talk to a professional about your needs.`,

	"sodium.much": `Most sodium comes from processed and restaurant food rather than the salt shaker.

- Cook at home more often.
- Compare labels and pick lower-salt versions.
- Flavor food with herbs, spices, lemon or garlic.`,

	"potassium.little": `Potassium helps balance fluids and blood pressure.

- Eat bananas, potatoes, beans, spinach and tomatoes.
- Dried fruit such as apricots is a dense source.
- Dairy and fish contribute too.`,

	"potassium.much": `High potassium from food is rarely a problem for healthy kidneys. If you take supplements or have kidney concerns, check with a professional.`,

	"vitaminA.little": `Vitamin A supports vision and the immune system.

- Eat orange and dark green vegetables such as carrots, sweet potatoes, spinach and kale.
- Eggs and dairy provide it as well.`,

	"vitaminA.much": `Too much vitamin A usually comes from supplements or liver. Check any supplements you take and limit liver to once a week.`,

	"vitaminC.little": `Vitamin C supports the immune system and iron absorption.

- Eat citrus fruit, berries, kiwi or peppers daily.
- Raw or lightly cooked vegetables keep more vitamin C.`,

	"vitaminC.much": `Excess vitamin C is mostly excreted, but large supplement doses can upset the stomach. Review any supplements.`,

	"calcium.little": `Calcium is important for bones and teeth.

- Include dairy or fortified plant milks.
- Tofu set with calcium, almonds and leafy greens help.
- Canned fish with soft bones is a good source.`,

	"calcium.much": `High calcium intake usually comes from supplements. Check the dose of any you take.`,

	"iron.little": `Iron carries oxygen in the blood; low intake can cause tiredness.

- Eat red meat, poultry, fish, beans, lentils or fortified cereals.
- Pair plant sources with vitamin C to improve absorption.
- Avoid tea or coffee right around meals.`,

	"iron.much": `Iron above your goal is usually from supplements or fortified foods. Review supplements and talk to a professional before taking more.`,
}
