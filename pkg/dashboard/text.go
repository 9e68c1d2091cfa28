package dashboard

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/cdash/pkg/model"
)

// Language selects the text catalog.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
)

// Languages lists the supported catalogs.
var Languages = []Language{English, Spanish}

// ParseLanguage accepts "en"/"es" (and their long names); empty means
// English.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return English, nil
	case "es", "spanish", "español", "espanol":
		return Spanish, nil
	}
	return English, fmt.Errorf("unsupported language %q (want en or es)", s)
}

// Text is the page chrome for one language.
type Text struct {
	Title            string
	Intro            string
	Prompt           string
	DatasetHeading   string
	SummaryHeading   string
	HeatmapTitle     string
	SummaryNarrative string
	ChartErrFormat   string
	SummaryErrFormat string
}

type catalog struct {
	Text
	labels     map[string]string
	axis       map[string]string
	narratives map[string]string
}

var catalogs = map[Language]*catalog{
	English: {
		Text: Text{
			Title: "Concrete Strength Data Analysis",
			Intro: "Explore how mixture ingredients and curing age relate to the " +
				"compressive strength of concrete. Pick a chart from the selector " +
				"to see the visualisation.",
			Prompt:           "Select the chart to display",
			DatasetHeading:   "Dataset",
			SummaryHeading:   "Summary statistics",
			HeatmapTitle:     "Summary statistics (heat map)",
			ChartErrFormat:   "Error generating chart: %v",
			SummaryErrFormat: "Error generating summary chart: %v",
			SummaryNarrative: `**Summary statistics in detail**: this heat map shows a statistical overview of the main variables in the dataset. The key metrics are:

- **Mean**: the average value of each variable, a general idea of how it behaves.
- **Standard deviation**: how spread out the data are around the mean.
- **Minimum and maximum**: the lowest and highest observed values, which bound the range of variation.
- **Percentiles**: values that split the data into intervals and describe the distribution.

Darker cells mean higher values. This makes key traits easy to spot, such as how much cement and water vary or the average strength of the concrete.`,
		},
		labels: map[string]string{
			KeyAgeStrength:    "Concrete Age vs Strength",
			KeyCementStrength: "Cement vs Strength",
			KeyWaterStrength:  "Water vs Strength",
			KeyCementWater:    "Cement vs Water",
		},
		axis: map[string]string{
			model.ColAge:      "Concrete age (days)",
			model.ColCement:   "Cement (kg/m³)",
			model.ColWater:    "Water (kg/m³)",
			model.ColStrength: "Strength (MPa)",
		},
		narratives: map[string]string{
			KeyAgeStrength: `**In detail**: this chart shows how the compressive strength of concrete (in megapascals, MPa) varies with its age (in days). In most cases strength grows as concrete ages, because the cement keeps hydrating. That matters: stronger concrete is better suited to carry structural loads. The gain slows over time and levels off after a certain period.`,
			KeyCementStrength: `**In detail**: this chart shows the relationship between the amount of cement in the mix (kg/m³) and the strength of the concrete. More cement generally means stronger concrete, since cement is the main binder in the mix. Too much cement raises costs and can hurt the workability of the mix, so the right balance is key to a good cost-benefit ratio.`,
			KeyWaterStrength: `**In detail**: this chart illustrates how the amount of water (kg/m³) affects concrete strength. Water is essential for the hydration reaction, but excess water lowers strength by making the concrete more porous and less dense. Too little water hampers hydration, which also hurts strength.`,
			KeyCementWater: `**In detail**: this chart shows the relationship between cement content and the amount of water in the mix. The right balance between the two is fundamental for strong, durable concrete. An excess of either relative to the other can degrade the mechanical properties of the concrete, so both must be tuned to the needs of each project.`,
		},
	},
	Spanish: {
		Text: Text{
			Title: "Portafolio de Análisis de Datos",
			Intro: "Bienvenido a este portafolio interactivo de análisis de datos. " +
				"En esta aplicación exploramos diferentes relaciones en los datos de " +
				"resistencia del concreto. Selecciona un gráfico del menú desplegable " +
				"para ver las visualizaciones.",
			Prompt:           "Seleccione el gráfico a visualizar",
			DatasetHeading:   "Dataset Utilizado",
			SummaryHeading:   "Resumen Estadístico",
			HeatmapTitle:     "Resumen Estadístico (Visualización Gráfica)",
			ChartErrFormat:   "Se produjo un error al generar el gráfico: %v",
			SummaryErrFormat: "Se produjo un error al generar el gráfico del resumen estadístico: %v",
			SummaryNarrative: `**Resumen Detallado del Resumen Estadístico**: Este gráfico de calor muestra un análisis estadístico de las principales variables del conjunto de datos. Las métricas clave incluyen:

- **Media**: El valor promedio de cada variable, útil para obtener una idea general del comportamiento de la variable.
- **Desviación estándar**: Mide la dispersión de los datos alrededor de la media, indicando la variabilidad.
- **Mínimo y Máximo**: Los valores más bajos y más altos observados, que ayudan a identificar el rango de variabilidad.
- **Percentiles**: Los valores que dividen el conjunto de datos en intervalos, proporcionando información sobre la distribución.

El gráfico de calor utiliza un mapa de colores (más oscuro indica valores más altos) para representar visualmente estas métricas. Esto facilita la identificación de características clave de las variables, como la variabilidad de la cantidad de cemento y agua, o la resistencia promedio del concreto.`,
		},
		labels: map[string]string{
			KeyAgeStrength:    "Relación entre Edad del Concreto y Resistencia",
			KeyCementStrength: "Relación entre Cemento y Resistencia",
			KeyWaterStrength:  "Relación entre Agua y Resistencia",
			KeyCementWater:    "Relación entre Cemento y Agua",
		},
		axis: map[string]string{
			model.ColAge:      "Edad del Concreto (días)",
			model.ColCement:   "Cemento (kg/m³)",
			model.ColWater:    "Agua (kg/m³)",
			model.ColStrength: "Resistencia (MPa)",
		},
		narratives: map[string]string{
			KeyAgeStrength: `**Resumen Detallado**: Este gráfico muestra cómo la resistencia del concreto (en megapascales, MPa) varía con la edad del concreto (en días). En la mayoría de los casos, a medida que el concreto envejece, su resistencia aumenta debido a la hidratación continua del cemento. Este proceso es crucial, ya que un concreto con mayor resistencia es más adecuado para soportar cargas estructurales. Sin embargo, el aumento de la resistencia disminuye con el tiempo, alcanzando una estabilización después de cierto periodo.`,
			KeyCementStrength: `**Resumen Detallado**: Este gráfico muestra la relación entre la cantidad de cemento (en kg/m³) utilizada en la mezcla y la resistencia del concreto. Un mayor contenido de cemento generalmente mejora la resistencia del concreto, ya que el cemento es el principal agente aglutinante en la mezcla. Sin embargo, un exceso de cemento puede aumentar los costos y puede afectar negativamente la trabajabilidad de la mezcla. Es crucial encontrar el balance adecuado para optimizar la relación costo-beneficio.`,
			KeyWaterStrength: `**Resumen Detallado**: Este gráfico ilustra cómo la cantidad de agua (en kg/m³) afecta la resistencia del concreto. El agua es esencial para la reacción de hidratación, pero un exceso de agua en la mezcla puede disminuir la resistencia del concreto, ya que provoca una mayor porosidad y menor densidad. Por otro lado, una cantidad insuficiente de agua puede dificultar el proceso de hidratación, también afectando negativamente la resistencia.`,
			KeyCementWater: `**Resumen Detallado**: Este gráfico muestra la relación entre el contenido de cemento y la cantidad de agua en la mezcla. El balance correcto entre estos dos ingredientes es fundamental para obtener un concreto con buena resistencia y durabilidad. Un exceso de agua o cemento en relación con el otro puede afectar negativamente las propiedades mecánicas del concreto, por lo que se deben ajustar según las necesidades específicas del proyecto.`,
		},
	},
}

func catalogFor(lang Language) *catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs[English]
}

// TextFor returns the page chrome for lang. Unknown languages fall back to
// English.
func TextFor(lang Language) Text {
	return catalogFor(lang).Text
}

// Narrative returns the explanatory paragraph (markdown) for the selection
// key, or "" for an unknown key.
func Narrative(key string, lang Language) string {
	return catalogFor(lang).narratives[key]
}

// AxisLabel returns the display label for a required column, or the column
// name itself for any other column.
func AxisLabel(column string, lang Language) string {
	if l, ok := catalogFor(lang).axis[column]; ok {
		return l
	}
	return column
}
