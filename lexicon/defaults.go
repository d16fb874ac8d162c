package lexicon

// DefaultMedications is the built-in seed list: common DCI with their
// French and English spellings, plus brand names frequently dispensed in
// Senegalese pharmacies. A configured lexicon file extends this list, it
// does not replace it.
var DefaultMedications = []string{
	// Analgesics and antipyretics
	"paracétamol", "paracetamol", "acetaminophen",
	"ibuprofène", "ibuprofen", "ibuprofene",
	"aspirine", "aspirin", "acide acétylsalicylique",
	"codéine", "codeine",
	"tramadol",
	"morphine",

	// Antibiotics
	"amoxicilline", "amoxicillin",
	"azithromycine", "azithromycin",
	"ciprofloxacine", "ciprofloxacin",
	"métronidazole", "metronidazole",
	"doxycycline",
	"ceftriaxone",
	"pénicilline", "penicillin",

	// Antimalarials
	"artemether", "artémether",
	"lumefantrine", "luméfantrine",
	"chloroquine",
	"quinine",
	"méfloquine", "mefloquine",
	"atovaquone",
	"proguanil",

	// Chronic conditions
	"metformine", "metformin",
	"glibenclamide",
	"insuline", "insulin",
	"amlodipine",
	"atenolol", "aténolol",
	"lisinopril",
	"furosémide", "furosemide",
	"hydrochlorothiazide",

	// Antihistamines and gastro
	"cétirizine", "cetirizine",
	"loratadine",
	"chlorphéniramine", "chlorpheniramine",
	"oméprazole", "omeprazole",
	"ranitidine",

	// Respiratory and other
	"salbutamol",
	"prednisolone",
	"diazépam", "diazepam",

	// Brand names
	"Doliprane", "Efferalgan", "Dafalgan", "Dolko",
	"Advil", "Nurofen", "Brufen",
	"Flagyl", "Amoxil",
	"Coartem", "Riamet", "Malarone",
	"Glucophage",
	"Ventolin",
}
