package units

// Physical constants (CODATA 2018).
var (
	Boltzmann          = New(1.380649e-23, JoulePerKelvin)
	VacuumPermeability = New(1.25663706212e-6, HenryPerMetre)
)
